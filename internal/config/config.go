// Package config 애플리케이션 설정의 로드와 검증을 담당합니다.
//
// 설정은 다음 순서로 병합되며, 뒤에 오는 값이 앞의 값을 덮어씁니다.
//
//  1. 기본값 (newDefaultConfig)
//  2. JSON 설정 파일 (기본: miniapp-server.json)
//  3. 환경 변수 (MINIAPP_ 접두사, 중첩 키는 "__"로 구분)
//     예: MINIAPP_MODERATION__ASSET__ORIGIN=https://cdn.example.com
//
// 작업 디렉토리에 .env 파일이 있으면 환경 변수 로드 전에 읽어 들입니다.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	"github.com/darkkaiser/miniapp-server/pkg/cronx"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/labstack/gommon/bytes"
)

const (
	// AppName 애플리케이션 이름
	AppName string = "miniapp-server"

	// DefaultFilename 기본 설정 파일명
	DefaultFilename = AppName + ".json"

	// EnvPrefix 설정을 덮어쓰는 환경 변수의 접두사
	EnvPrefix = "MINIAPP_"

	// legacyAssetOriginEnv 이전 배포 환경에서 이미지 원본 주소를 지정하던 환경 변수
	legacyAssetOriginEnv = "QI_NIU_DOMAIN"

	minStageTimeout = 1 * time.Second
	maxStageTimeout = 60 * time.Second
)

func newDefaultConfig() AppConfig {
	return AppConfig{
		Debug: false,
		HTTP: HTTPConfig{
			ListenPort:     2443,
			AllowOrigins:   []string{"*"},
			BodyLimit:      "2M",
			RequestTimeout: 60 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 20,
				Burst:             40,
			},
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		Token: TokenConfig{
			Endpoint:      "https://api.weixin.qq.com/cgi-bin/token",
			Timeout:       10 * time.Second,
			Cache:         "memory",
			CacheSize:     1024,
			RefreshMargin: 5 * time.Minute,
		},
		Moderation: ModerationConfig{
			TextEndpoint:     "https://api.weixin.qq.com/wxa/msg_sec_check",
			ImageEndpoint:    "https://api.weixin.qq.com/wxa/img_sec_check",
			ProviderTimeout:  10 * time.Second,
			MaxResponseBytes: 1 << 20,
			MaxImages:        9,
			Retry: RetryConfig{
				Enabled:    false,
				MaxRetries: 2,
				MinDelay:   1 * time.Second,
				MaxDelay:   5 * time.Second,
			},
			Asset: AssetConfig{
				ScratchDir:   "scratch",
				FetchTimeout: 10 * time.Second,
				MaxBytes:     10 << 20,
				SweepSpec:    "0 */10 * * * *",
				SweepMaxAge:  1 * time.Hour,
			},
		},
		Alert: AlertConfig{
			Telegram: TelegramConfig{
				APIEndpoint: "https://api.telegram.org/bot%s/%s",
			},
		},
	}
}

// Load 기본 설정 파일을 읽어 설정을 구성합니다.
func Load() (*AppConfig, error) {
	return LoadWithFile(DefaultFilename)
}

// LoadWithFile 지정한 설정 파일을 읽어 설정을 구성합니다.
func LoadWithFile(filename string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, ".env 파일을 읽는 중 오류가 발생했습니다")
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(newDefaultConfig(), "json"), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "애플리케이션 기본 설정 로드에 실패했습니다")
	}

	if err := k.Load(file.Provider(filename), json.Parser()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.Wrapf(err, apperrors.System, "설정 파일을 찾을 수 없습니다: '%s'", filename)
		}
		return nil, apperrors.Wrapf(err, apperrors.InvalidInput, "설정 파일 로드 중 오류가 발생했습니다: '%s'", filename)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", normalizeEnvKey), nil); err != nil {
		return nil, apperrors.Wrap(err, apperrors.System, "환경 변수 로드에 실패했습니다")
	}

	var appConfig AppConfig
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			ErrorUnused:      true, // 구조체에 정의되지 않은 키가 있으면 오타로 간주합니다.
			WeaklyTypedInput: true,
			TagName:          "json",
			Result:           &appConfig,
		},
	}
	if err := k.UnmarshalWithConf("", &appConfig, unmarshalConf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidInput, "설정 데이터를 애플리케이션 구조체로 변환하는데 실패했습니다")
	}

	if appConfig.Moderation.Asset.Origin == "" {
		appConfig.Moderation.Asset.Origin = strings.TrimSpace(os.Getenv(legacyAssetOriginEnv))
	}
	appConfig.Moderation.Asset.Origin = strings.TrimRight(appConfig.Moderation.Asset.Origin, "/")

	if err := appConfig.validate(); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.InvalidInput, "설정 파일('%s')의 유효성 검증에 실패했습니다", filename)
	}

	return &appConfig, nil
}

// normalizeEnvKey MINIAPP_TOKEN__REDIS_URL 형태의 환경 변수명을 token.redis_url 형태의 키로 변환합니다.
func normalizeEnvKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

func (c *AppConfig) validate() error {
	if err := c.HTTP.validate(); err != nil {
		return err
	}
	if err := checkStruct(c.Store, "저장소(store)"); err != nil {
		return err
	}
	if err := c.Token.validate(); err != nil {
		return err
	}
	if err := c.Moderation.validate(); err != nil {
		return err
	}

	if err := checkStruct(c.Alert.Telegram, "텔레그램 알림(alert.telegram)"); err != nil {
		return err
	}

	if err := checkUniqueField(c.Admins, "ID", "관리자(admins)"); err != nil {
		return err
	}
	if err := checkUniqueField(c.Admins, "Key", "관리자(admins)"); err != nil {
		return err
	}
	for i, a := range c.Admins {
		if err := checkStruct(a, fmt.Sprintf("관리자(admins[%d])", i)); err != nil {
			return err
		}
	}

	return nil
}

func (c *HTTPConfig) validate() error {
	if err := checkStruct(c, "웹 서버(http)"); err != nil {
		return err
	}

	for _, origin := range c.AllowOrigins {
		if origin == "*" && len(c.AllowOrigins) > 1 {
			return apperrors.New(apperrors.InvalidInput, "와일드카드(*)는 다른 도메인과 함께 사용할 수 없습니다. 모든 도메인을 허용하려면 와일드카드만 설정하세요")
		}
	}

	if _, err := bytes.Parse(c.BodyLimit); err != nil {
		return apperrors.Wrapf(err, apperrors.InvalidInput, "요청 본문 크기 제한(body_limit) 형식이 올바르지 않습니다: '%s' (예: 2M, 512K)", c.BodyLimit)
	}
	if c.RequestTimeout <= 0 {
		return apperrors.New(apperrors.InvalidInput, "요청 처리 제한 시간(request_timeout)은 0보다 커야 합니다")
	}

	return checkStruct(c.RateLimit, "요청 제한(http.rate_limit)")
}

func (c *TokenConfig) validate() error {
	if err := checkStruct(c, "토큰(token)"); err != nil {
		return err
	}
	if err := checkStageTimeout(c.Timeout, "token.timeout"); err != nil {
		return err
	}
	if c.RefreshMargin < 0 {
		return apperrors.New(apperrors.InvalidInput, "토큰 갱신 여유 시간(token.refresh_margin)은 0 이상이어야 합니다")
	}
	return nil
}

func (c *ModerationConfig) validate() error {
	if err := checkStruct(c, "콘텐츠 검사(moderation)"); err != nil {
		return err
	}
	if err := checkStageTimeout(c.ProviderTimeout, "moderation.provider_timeout"); err != nil {
		return err
	}
	if err := checkStageTimeout(c.Asset.FetchTimeout, "moderation.asset.fetch_timeout"); err != nil {
		return err
	}

	if c.Retry.Enabled && c.Retry.MaxDelay < c.Retry.MinDelay {
		return apperrors.New(apperrors.InvalidInput, "재시도 최대 대기 시간(moderation.retry.max_delay)은 최소 대기 시간보다 작을 수 없습니다")
	}

	if err := cronx.Validate(c.Asset.SweepSpec); err != nil {
		return apperrors.Wrap(err, apperrors.InvalidInput, "임시 파일 정리 스케줄(moderation.asset.sweep_spec) 설정이 유효하지 않습니다")
	}
	if c.Asset.SweepMaxAge < time.Minute {
		return apperrors.New(apperrors.InvalidInput, "임시 파일 보관 시간(moderation.asset.sweep_max_age)은 1분 이상이어야 합니다")
	}

	return nil
}

func checkStageTimeout(d time.Duration, key string) error {
	if d < minStageTimeout || d > maxStageTimeout {
		return apperrors.Newf(apperrors.InvalidInput, "제한 시간(%s)은 %s 이상 %s 이하여야 합니다: %s", key, minStageTimeout, maxStageTimeout, d)
	}
	return nil
}

// VerifyRecommendations 서비스 구동은 가능하지만 운영상 주의가 필요한 설정에 대한 경고 목록을 반환합니다.
func (c *AppConfig) VerifyRecommendations() []string {
	var warnings []string

	if c.HTTP.ListenPort < 1024 {
		warnings = append(warnings, fmt.Sprintf("시스템 예약 포트(1-1023)를 사용하도록 설정되었습니다(port: %d). 이 경우 서버 구동 시 관리자 권한이 필요할 수 있습니다", c.HTTP.ListenPort))
	}
	if c.Moderation.Asset.InsecureSkipVerify {
		warnings = append(warnings, "이미지 원본 저장소의 TLS 인증서 검증이 비활성화되어 있습니다(moderation.asset.insecure_skip_verify). 신뢰할 수 있는 내부 저장소에서만 사용하세요")
	}
	if len(c.Admins) == 0 {
		warnings = append(warnings, "등록된 관리자(admins)가 없습니다. /api/v1 하위의 모든 요청이 거부됩니다")
	}
	if c.Store.Driver == "memory" {
		warnings = append(warnings, "메모리 저장소(store.driver=memory)를 사용 중입니다. 서버를 재시작하면 등록된 애플리케이션이 사라집니다")
	}

	return warnings
}
