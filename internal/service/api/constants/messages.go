package constants

// 클라이언트에게 반환되는 에러 메시지 상수입니다.
const (
	// 400 Bad Request
	ErrMsgBadRequest            = "잘못된 요청입니다"
	ErrMsgBadRequestInvalidBody = "요청 본문을 파싱할 수 없습니다. JSON 형식을 확인해주세요"
	ErrMsgBadRequestInvalidID   = "ID 형식이 올바르지 않습니다"

	// 401 Unauthorized
	ErrMsgUnauthorizedAdminKeyRequired = "admin_key는 필수입니다 (X-Admin-Key 헤더 또는 admin_key 쿼리 파라미터)"
	ErrMsgUnauthorizedInvalidAdminKey  = "admin_key가 유효하지 않습니다"

	// 404 Not Found
	ErrMsgNotFound = "요청한 리소스를 찾을 수 없습니다"

	// 413 Request Entity Too Large
	ErrMsgRequestEntityTooLarge = "요청 본문이 너무 큽니다"

	// 415 Unsupported Media Type
	ErrMsgUnsupportedMediaType = "지원하지 않는 Content-Type 형식입니다"

	// 429 Too Many Requests
	ErrMsgTooManyRequests = "요청이 너무 많습니다. 잠시 후 다시 시도해주세요"

	// 500 Internal Server Error
	ErrMsgInternalServer = "내부 서버 오류가 발생했습니다"

	// 성공 응답 메시지
	MsgSuccess = "ok"
)

// 내부 로깅을 위한 메시지 상수입니다.
const (
	LogMsgServiceStarting       = "API 서비스 시작중..."
	LogMsgServiceStarted        = "API 서비스 시작됨"
	LogMsgServiceAlreadyStarted = "API 서비스가 이미 시작됨!!!"
	LogMsgServiceStopping       = "API 서비스 중지중..."
	LogMsgServiceStopped        = "API 서비스 중지됨"
	LogMsgServiceUnexpectedExit = "API 서비스가 예기치 않게 종료되었습니다"

	LogMsgServiceHTTPServerStarting      = "API 서비스 > http 서버 시작"
	LogMsgServiceHTTPServerStopped       = "API 서비스 > http 서버 중지됨"
	LogMsgServiceHTTPServerShutdownError = "API 서비스 > http 서버 종료 중 오류 발생"
	LogMsgServiceHTTPServerFatalError    = "API 서비스 > http 서버를 구성하는 중에 치명적인 오류가 발생하였습니다"

	// AlertMsgHTTPServerFatalError 운영자에게 보내는 알림 (포트, 원인)
	AlertMsgHTTPServerFatalError = "API 서버가 비정상 종료되었습니다.\n포트: %d\n원인: %v"

	LogMsgHTTP4xxClientError = "HTTP 4xx: 클라이언트 요청 오류"
	LogMsgHTTP5xxServerError = "HTTP 5xx: 서버 내부 오류"
)
