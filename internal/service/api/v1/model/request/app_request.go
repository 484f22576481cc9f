// Package request v1 API 요청 모델을 정의합니다.
package request

import "github.com/darkkaiser/miniapp-server/internal/service/app"

// RegisterAppRequest 미니앱 등록 요청
type RegisterAppRequest struct {
	Name      string `json:"name" validate:"required,max=100" korean:"앱 이름" example:"캠퍼스 마켓"`
	AppKey    string `json:"app_key" validate:"required,max=64" korean:"앱 키" example:"wx0123456789abcdef"`
	AppSecret string `json:"app_secret" validate:"required,max=128" korean:"앱 시크릿" example:"0123456789abcdef0123456789abcdef"`
	CollegeID uint64 `json:"college_id" korean:"학교 ID" example:"3"`
	Mobile    string `json:"mobile" validate:"required,max=20" korean:"연락처" example:"010-0000-0000"`
	Domain    string `json:"domain" validate:"omitempty,max=255" korean:"도메인" example:"market.example.com"`
}

// ToInput 서비스 입력으로 변환합니다.
func (r *RegisterAppRequest) ToInput() app.RegisterInput {
	return app.RegisterInput{
		Name:      r.Name,
		AppKey:    r.AppKey,
		AppSecret: r.AppSecret,
		CollegeID: r.CollegeID,
		Mobile:    r.Mobile,
		Domain:    r.Domain,
	}
}

// ConnectAdminRequest 관리자 연결 요청
type ConnectAdminRequest struct {
	AdminID uint64 `json:"admin_id" validate:"required" korean:"관리자 ID" example:"2"`
}
