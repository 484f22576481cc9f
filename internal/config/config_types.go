package config

import "time"

// AppConfig 애플리케이션 전체 설정입니다.
type AppConfig struct {
	Debug      bool             `json:"debug"`
	HTTP       HTTPConfig       `json:"http"`
	Store      StoreConfig      `json:"store"`
	Token      TokenConfig      `json:"token"`
	Moderation ModerationConfig `json:"moderation"`
	App        AppPolicyConfig  `json:"app"`
	Alert      AlertConfig      `json:"alert"`
	Admins     []AdminConfig    `json:"admins"`
}

// HTTPConfig API 서버 설정입니다.
type HTTPConfig struct {
	ListenPort  int    `json:"listen_port" validate:"min=1,max=65535"`
	TLSServer   bool   `json:"tls_server"`
	TLSCertFile string `json:"tls_cert_file" validate:"required_if=TLSServer true,omitempty,file"`
	TLSKeyFile  string `json:"tls_key_file" validate:"required_if=TLSServer true,omitempty,file"`

	AllowOrigins   []string        `json:"allow_origins" validate:"min=1,dive,cors_origin"`
	BodyLimit      string          `json:"body_limit" validate:"required"`
	RequestTimeout time.Duration   `json:"request_timeout"`
	RateLimit      RateLimitConfig `json:"rate_limit"`
}

// RateLimitConfig IP 단위 요청 제한 설정입니다.
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" validate:"gt=0"`
	Burst             int     `json:"burst" validate:"min=1"`
}

// StoreConfig 애플리케이션 저장소 설정입니다.
//
//   - memory: 프로세스 메모리 (재시작 시 소멸)
//   - file:   Path에 지정한 JSON 파일
//   - sql:    DSN에 지정한 데이터베이스 (sqlite://<path> 또는 postgres://...)
type StoreConfig struct {
	Driver string `json:"driver" validate:"oneof=memory file sql"`
	Path   string `json:"path" validate:"required_if=Driver file"`
	DSN    string `json:"dsn" validate:"required_if=Driver sql"`
}

// TokenConfig 액세스 토큰 발급 설정입니다.
type TokenConfig struct {
	Endpoint      string        `json:"endpoint" validate:"required,url"`
	Timeout       time.Duration `json:"timeout"`
	Cache         string        `json:"cache" validate:"oneof=memory redis"`
	CacheSize     int           `json:"cache_size" validate:"min=1"`
	RedisURL      string        `json:"redis_url" validate:"required_if=Cache redis"`
	RefreshMargin time.Duration `json:"refresh_margin"`
}

// ModerationConfig 콘텐츠 검사 설정입니다.
type ModerationConfig struct {
	TextEndpoint     string        `json:"text_endpoint" validate:"required,url"`
	ImageEndpoint    string        `json:"image_endpoint" validate:"required,url"`
	ProviderTimeout  time.Duration `json:"provider_timeout"`
	MaxResponseBytes int64         `json:"max_response_bytes" validate:"min=1"`
	MaxImages        int           `json:"max_images" validate:"min=1"`
	Retry            RetryConfig   `json:"retry"`
	Asset            AssetConfig   `json:"asset"`
}

// RetryConfig 재시도 설정입니다. 기본값은 비활성화이며, 활성화하더라도
// 멱등한 GET 요청(이미지 다운로드, 토큰 발급)에만 적용됩니다.
type RetryConfig struct {
	Enabled    bool          `json:"enabled"`
	MaxRetries int           `json:"max_retries" validate:"min=0,max=10"`
	MinDelay   time.Duration `json:"min_delay"`
	MaxDelay   time.Duration `json:"max_delay"`
}

// AssetConfig 검사 대상 이미지를 내려받는 원본 저장소 설정입니다.
type AssetConfig struct {
	Origin             string        `json:"origin" validate:"required,url"`
	ScratchDir         string        `json:"scratch_dir" validate:"required"`
	FetchTimeout       time.Duration `json:"fetch_timeout"`
	InsecureSkipVerify bool          `json:"insecure_skip_verify"`
	MaxBytes           int64         `json:"max_bytes" validate:"min=1"`
	SweepSpec          string        `json:"sweep_spec" validate:"required"`
	SweepMaxAge        time.Duration `json:"sweep_max_age"`
}

// AppPolicyConfig 애플리케이션 상태 전환 정책입니다.
type AppPolicyConfig struct {
	// ModeSwitchGuard 활성화 시 심사 대기(pending_audit) 또는 종료(closed) 상태의 앱은 모드를 전환할 수 없습니다.
	ModeSwitchGuard bool `json:"mode_switch_guard"`
}

// AdminConfig API 호출 권한을 가진 관리자입니다.
type AdminConfig struct {
	ID   uint64 `json:"id" validate:"required"`
	Name string `json:"name"`
	Key  string `json:"key" validate:"required,min=16"`
}

// AlertConfig 운영자 장애 알림 설정입니다.
type AlertConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

// TelegramConfig 텔레그램 봇 알림 설정입니다. BotToken이 비어 있으면 알림을 보내지 않습니다.
type TelegramConfig struct {
	BotToken    string `json:"bot_token"`
	ChatID      int64  `json:"chat_id" validate:"required_with=BotToken"`
	APIEndpoint string `json:"api_endpoint" validate:"required_with=BotToken"`
}

// Enabled 텔레그램 알림 사용 여부를 반환합니다.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != ""
}
