// Package domain API 계층에서 사용하는 도메인 모델을 정의합니다.
package domain

// Admin 인증을 통과한 관리자입니다.
type Admin struct {
	ID   uint64
	Name string
}
