package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const minimalConfig = `{
	"moderation": {
		"asset": { "origin": "https://cdn.example.com/" }
	},
	"admins": [
		{ "id": 1, "name": "운영자", "key": "admin-key-0123456789" }
	]
}`

func TestNormalizeEnvKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"MINIAPP_DEBUG", "debug"},
		{"MINIAPP_TOKEN__REDIS_URL", "token.redis_url"},
		{"MINIAPP_MODERATION__ASSET__INSECURE_SKIP_VERIFY", "moderation.asset.insecure_skip_verify"},
		{"MINIAPP_Mixed_Case__Key", "mixed_case.key"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeEnvKey(tt.input), "Input: %s", tt.input)
	}
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := newDefaultConfig()

	assert.False(t, cfg.Debug)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 10*time.Second, cfg.Moderation.ProviderTimeout)
	assert.Equal(t, 10*time.Second, cfg.Moderation.Asset.FetchTimeout)
	assert.Equal(t, 10*time.Second, cfg.Token.Timeout)
	assert.False(t, cfg.Moderation.Retry.Enabled, "재시도는 명시적으로 활성화해야 합니다")
	assert.False(t, cfg.Moderation.Asset.InsecureSkipVerify, "TLS 검증은 기본으로 활성화되어야 합니다")
	assert.False(t, cfg.App.ModeSwitchGuard)
}

func TestLoadWithFile(t *testing.T) {
	t.Run("최소 설정 파일에 기본값이 병합된다", func(t *testing.T) {
		cfg, err := LoadWithFile(writeConfigFile(t, minimalConfig))
		require.NoError(t, err)

		assert.Equal(t, "https://cdn.example.com", cfg.Moderation.Asset.Origin, "후행 슬래시는 제거되어야 합니다")
		assert.Equal(t, "https://api.weixin.qq.com/wxa/msg_sec_check", cfg.Moderation.TextEndpoint)
		assert.Equal(t, 2443, cfg.HTTP.ListenPort)
		require.Len(t, cfg.Admins, 1)
		assert.Equal(t, uint64(1), cfg.Admins[0].ID)
	})

	t.Run("기간 문자열을 해석한다", func(t *testing.T) {
		cfg, err := LoadWithFile(writeConfigFile(t, `{
			"moderation": {
				"provider_timeout": "5s",
				"asset": { "origin": "https://cdn.example.com", "fetch_timeout": "30s" }
			}
		}`))
		require.NoError(t, err)

		assert.Equal(t, 5*time.Second, cfg.Moderation.ProviderTimeout)
		assert.Equal(t, 30*time.Second, cfg.Moderation.Asset.FetchTimeout)
	})

	t.Run("환경 변수가 파일 값을 덮어쓴다", func(t *testing.T) {
		t.Setenv("MINIAPP_DEBUG", "true")
		t.Setenv("MINIAPP_MODERATION__ASSET__INSECURE_SKIP_VERIFY", "true")
		t.Setenv("MINIAPP_APP__MODE_SWITCH_GUARD", "true")

		cfg, err := LoadWithFile(writeConfigFile(t, minimalConfig))
		require.NoError(t, err)

		assert.True(t, cfg.Debug)
		assert.True(t, cfg.Moderation.Asset.InsecureSkipVerify)
		assert.True(t, cfg.App.ModeSwitchGuard)
	})

	t.Run("이전 환경 변수로 이미지 원본 주소를 지정할 수 있다", func(t *testing.T) {
		t.Setenv("QI_NIU_DOMAIN", "https://legacy.example.com")

		cfg, err := LoadWithFile(writeConfigFile(t, `{}`))
		require.NoError(t, err)
		assert.Equal(t, "https://legacy.example.com", cfg.Moderation.Asset.Origin)
	})

	t.Run("실패: 파일 없음", func(t *testing.T) {
		_, err := LoadWithFile(filepath.Join(t.TempDir(), "missing.json"))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.System))
	})

	t.Run("실패: 알 수 없는 키", func(t *testing.T) {
		_, err := LoadWithFile(writeConfigFile(t, `{"moderation": {"asset": {"origin": "https://a.com"}}, "unknown_key": 1}`))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})

	t.Run("실패: 이미지 원본 주소 누락", func(t *testing.T) {
		_, err := LoadWithFile(writeConfigFile(t, `{}`))
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
	})
}

func TestAppConfig_Validate(t *testing.T) {
	valid := func() AppConfig {
		cfg := newDefaultConfig()
		cfg.Moderation.Asset.Origin = "https://cdn.example.com"
		cfg.Admins = []AdminConfig{{ID: 1, Key: "admin-key-0123456789"}}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{"정상", func(c *AppConfig) {}, ""},
		{"잘못된 포트", func(c *AppConfig) { c.HTTP.ListenPort = 70000 }, "listen_port"},
		{"와일드카드와 도메인 혼용", func(c *AppConfig) { c.HTTP.AllowOrigins = []string{"*", "https://a.com"} }, "와일드카드"},
		{"잘못된 CORS Origin", func(c *AppConfig) { c.HTTP.AllowOrigins = []string{"https://a.com/path"} }, "CORS Origin"},
		{"잘못된 본문 크기", func(c *AppConfig) { c.HTTP.BodyLimit = "lots" }, "body_limit"},
		{"알 수 없는 저장소", func(c *AppConfig) { c.Store.Driver = "mongo" }, "driver"},
		{"sql 저장소 DSN 누락", func(c *AppConfig) { c.Store.Driver = "sql" }, "dsn"},
		{"redis 캐시 주소 누락", func(c *AppConfig) { c.Token.Cache = "redis" }, "redis_url"},
		{"너무 짧은 검사 제한 시간", func(c *AppConfig) { c.Moderation.ProviderTimeout = 100 * time.Millisecond }, "provider_timeout"},
		{"너무 긴 다운로드 제한 시간", func(c *AppConfig) { c.Moderation.Asset.FetchTimeout = 2 * time.Minute }, "fetch_timeout"},
		{"잘못된 정리 스케줄", func(c *AppConfig) { c.Moderation.Asset.SweepSpec = "*/5 * * * *" }, "sweep_spec"},
		{"재시도 지연 역전", func(c *AppConfig) {
			c.Moderation.Retry.Enabled = true
			c.Moderation.Retry.MinDelay = 5 * time.Second
			c.Moderation.Retry.MaxDelay = time.Second
		}, "max_delay"},
		{"중복 관리자 ID", func(c *AppConfig) {
			c.Admins = append(c.Admins, AdminConfig{ID: 1, Key: "another-key-0123456789"})
		}, "중복"},
		{"짧은 관리자 키", func(c *AppConfig) { c.Admins[0].Key = "short" }, "key"},
		{"텔레그램 채팅 ID 누락", func(c *AppConfig) { c.Alert.Telegram.BotToken = "123:abc" }, "chat_id"},
		{"텔레그램 알림", func(c *AppConfig) {
			c.Alert.Telegram.BotToken = "123:abc"
			c.Alert.Telegram.ChatID = -1001
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, apperrors.Is(err, apperrors.InvalidInput))
		})
	}
}

func TestVerifyRecommendations(t *testing.T) {
	cfg := newDefaultConfig()
	cfg.HTTP.ListenPort = 443
	cfg.Moderation.Asset.InsecureSkipVerify = true

	warnings := cfg.VerifyRecommendations()

	assert.Len(t, warnings, 4)
	assert.Contains(t, warnings[1], "insecure_skip_verify")
}
