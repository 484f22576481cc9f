package errors

import "strconv"

// ErrorType 에러의 종류를 나타냅니다.
type ErrorType int

const (
	// Unknown 분류되지 않은 에러
	Unknown ErrorType = iota

	// Internal 내부 로직 오류 (버그 등)
	Internal

	// System 디스크, 네트워크, 데이터베이스 등 인프라 오류
	System

	// Unauthorized 자격 증명 실패 (액세스 토큰 발급 실패 등)
	Unauthorized

	// Forbidden 인증은 되었으나 허용되지 않은 동작
	Forbidden

	// InvalidInput 잘못된 입력값 또는 정책 위반 콘텐츠
	InvalidInput

	// Conflict 중복 생성 등 리소스 충돌
	Conflict

	// NotFound 리소스를 찾을 수 없음
	NotFound

	// ExecutionFailed 외부 호출 또는 작업 실행 실패
	ExecutionFailed

	// ParsingFailed 데이터 파싱 실패
	ParsingFailed

	// Timeout 작업 시간 초과
	Timeout

	// Unavailable 외부 서비스 일시적 사용 불가
	Unavailable
)

var errorTypeNames = [...]string{
	Unknown:         "Unknown",
	Internal:        "Internal",
	System:          "System",
	Unauthorized:    "Unauthorized",
	Forbidden:       "Forbidden",
	InvalidInput:    "InvalidInput",
	Conflict:        "Conflict",
	NotFound:        "NotFound",
	ExecutionFailed: "ExecutionFailed",
	ParsingFailed:   "ParsingFailed",
	Timeout:         "Timeout",
	Unavailable:     "Unavailable",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return "ErrorType(" + strconv.Itoa(int(t)) + ")"
	}
	return errorTypeNames[t]
}
