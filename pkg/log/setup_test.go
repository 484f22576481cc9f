package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Validate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"정상", Options{Name: "miniapp-server"}, false},
		{"Name 누락", Options{}, true},
		{"Dir가 파일", Options{Name: "a", Dir: file}, true},
		{"음수 MaxAge", Options{Name: "a", MaxAge: -1}, true},
		{"음수 MaxBackups", Options{Name: "a", MaxBackups: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProfiles(t *testing.T) {
	prod := NewProductionOptions("miniapp-server")
	assert.Equal(t, InfoLevel, prod.Level)
	assert.True(t, prod.EnableCriticalLog)
	assert.False(t, prod.EnableConsoleLog)

	dev := NewDevelopmentOptions("miniapp-server")
	assert.Equal(t, TraceLevel, dev.Level)
	assert.True(t, dev.EnableConsoleLog)
	assert.False(t, dev.EnableVerboseLog)
}

func TestSetup_WritesRotatedFiles(t *testing.T) {
	dir := t.TempDir()
	logger := logrus.New()

	c, err := setup(logger, Options{
		Name:              "miniapp-server",
		Dir:               dir,
		Level:             TraceLevel,
		EnableCriticalLog: true,
		EnableVerboseLog:  true,
	})
	require.NoError(t, err)

	logger.Info("info message")
	logger.Error("error message")
	logger.Debug("debug message")

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "두 번째 Close도 에러 없이 반환되어야 합니다")

	read := func(name string) string {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		return string(b)
	}

	mainLog := read("miniapp-server.log")
	assert.Contains(t, mainLog, "info message")
	assert.Contains(t, mainLog, "error message")
	assert.NotContains(t, mainLog, "debug message")

	assert.Contains(t, read("miniapp-server.critical.log"), "error message")
	assert.Contains(t, read("miniapp-server.verbose.log"), "debug message")
}

func TestSetup_InvalidOptions(t *testing.T) {
	_, err := setup(logrus.New(), Options{})
	assert.Error(t, err)
}

func TestWithComponentAndFields(t *testing.T) {
	fields := Fields{"app_id": 7}
	entry := WithComponentAndFields("moderation", fields)

	assert.Equal(t, "moderation", entry.Data["component"])
	assert.Equal(t, 7, entry.Data["app_id"])
	assert.NotContains(t, fields, "component", "입력 맵은 변경되지 않아야 합니다")

	assert.Equal(t, "token", WithComponent("token").Data["component"])
}
