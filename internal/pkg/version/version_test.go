package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })

	t.Run("ldflags 값이 VCS 정보보다 우선한다", func(t *testing.T) {
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "true"},
			}}, true
		}

		info := resolve(Info{Version: "v1.2.0", Commit: "f25b8bf"})

		assert.Equal(t, "v1.2.0", info.Version)
		assert.Equal(t, "f25b8bf", info.Commit)
		assert.True(t, info.DirtyBuild)
		assert.Equal(t, runtime.GOOS, info.OS)
	})

	t.Run("빈 값은 VCS 정보 또는 unknown으로 채운다", func(t *testing.T) {
		readBuildInfo = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{
				Main:     debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}},
			}, true
		}

		info := resolve(Info{})

		assert.Equal(t, unknown, info.Version)
		assert.Equal(t, "abc", info.Commit)
		assert.Equal(t, unknown, info.BuildDate)
	})
}

func TestInfo_String(t *testing.T) {
	info := Info{Version: "v1.2.0", Commit: "0123456789", BuildNumber: "42", GoVersion: "go1.24.0", DirtyBuild: true}
	assert.Equal(t, "v1.2.0+dirty (commit: 0123456, build: 42, go: go1.24.0)", info.String())

	assert.Equal(t, "unknown", Info{Version: "unknown", Commit: "unknown"}.String())
}

func TestGet(t *testing.T) {
	assert.NotEmpty(t, Get().Version)
}
