package constants

import "time"

// 서버 설정 기본값 상수입니다.
const (
	// DefaultRequestTimeout HTTP 요청 처리의 기본 타임아웃 시간 (60초)
	DefaultRequestTimeout = 60 * time.Second

	// DefaultMaxBodySize 요청 본문의 기본 최대 크기
	DefaultMaxBodySize = "1M"

	// DefaultRateLimitPerSecond IP별 초당 허용 요청 수 기본값
	DefaultRateLimitPerSecond = 20

	// DefaultRateLimitBurst IP별 버스트 허용량 기본값
	DefaultRateLimitBurst = 40

	// DefaultReadHeaderTimeout HTTP 헤더 읽기 최대 대기 시간 (Slowloris 방어)
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultIdleTimeout Keep-Alive 연결의 최대 유휴 시간
	DefaultIdleTimeout = 120 * time.Second

	// ShutdownTimeout Graceful Shutdown 시 최대 대기 시간
	ShutdownTimeout = 5 * time.Second
)
