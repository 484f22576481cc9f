package constants

// HTTP 헤더 및 쿼리 파라미터 키 상수입니다.
const (
	// HeaderAdminKey 관리자 인증용 HTTP 헤더 키 (권장 방식)
	HeaderAdminKey = "X-Admin-Key"

	// QueryParamAdminKey 관리자 인증용 쿼리 파라미터 키 (레거시)
	QueryParamAdminKey = "admin_key"

	// HeaderRetryAfter 요청 제한 시 재시도 대기 시간을 알리는 헤더
	HeaderRetryAfter = "Retry-After"
)

// SensitiveQueryParams 로그 기록 시 마스킹해야 할 쿼리 파라미터 목록입니다.
var SensitiveQueryParams = []string{
	QueryParamAdminKey,
	"access_token",
	"app_key",
	"app_secret",
	"secret",
	"password",
	"token",
}
