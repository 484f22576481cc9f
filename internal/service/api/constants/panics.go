package constants

// 서비스 구성 시 필수 의존성이 누락되었을 때의 패닉 메시지입니다.
const (
	PanicMsgAppConfigRequired     = "AppConfig는 필수입니다"
	PanicMsgAppServiceRequired    = "AppService는 필수입니다"
	PanicMsgModeratorRequired     = "Moderator는 필수입니다"
	PanicMsgAuthenticatorRequired = "Authenticator는 필수입니다"
	PanicMsgGathererRequired      = "Gatherer는 필수입니다"
	PanicMsgNotifierRequired      = "Notifier는 필수입니다"

	PanicMsgAuthContextAdminNotFound = "Auth: Context에서 관리자 정보를 가져올 수 없습니다. 인증 미들웨어가 적용되었는지 확인해주세요. (원인: %v)"

	PanicMsgRateLimitRequestsPerSecondInvalid = "RateLimiting: requestsPerSecond는 양수여야 합니다 (현재값: %v)"
	PanicMsgRateLimitBurstInvalid             = "RateLimiting: burst는 양수여야 합니다 (현재값: %d)"
)
