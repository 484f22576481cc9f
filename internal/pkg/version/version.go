// Package version 빌드 시점에 주입된 버전 정보를 제공합니다.
//
// 빌드 예:
//
//	go build -ldflags "-X github.com/darkkaiser/miniapp-server/internal/pkg/version.appVersion=v1.2.0 \
//	  -X github.com/darkkaiser/miniapp-server/internal/pkg/version.buildNumber=42"
//
// ldflags가 비어 있으면 runtime/debug의 VCS 정보로 보완합니다.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync/atomic"
)

const unknown = "unknown"

var (
	appVersion    = ""
	gitCommitHash = ""
	buildDate     = ""
	buildNumber   = ""
)

var (
	current       atomic.Pointer[Info]
	readBuildInfo = debug.ReadBuildInfo
)

func init() {
	info := resolve(Info{
		Version:     strings.TrimSpace(appVersion),
		Commit:      strings.TrimSpace(gitCommitHash),
		BuildDate:   strings.TrimSpace(buildDate),
		BuildNumber: strings.TrimSpace(buildNumber),
	})
	current.Store(&info)
}

// Info 빌드 정보입니다. /version 응답 본문으로도 사용됩니다.
type Info struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	BuildDate   string `json:"build_date"`
	BuildNumber string `json:"build_number"`
	GoVersion   string `json:"go_version"`
	OS          string `json:"os"`
	Arch        string `json:"arch"`
	DirtyBuild  bool   `json:"dirty_build"`
}

// Get 현재 빌드 정보를 반환합니다.
func Get() Info {
	if p := current.Load(); p != nil {
		return *p
	}
	return Info{Version: unknown, Commit: unknown, BuildDate: unknown}
}

func resolve(info Info) Info {
	info.GoVersion = runtime.Version()
	info.OS = runtime.GOOS
	info.Arch = runtime.GOARCH

	if bi, ok := readBuildInfo(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = s.Value
				}
			case "vcs.modified":
				info.DirtyBuild = info.DirtyBuild || s.Value == "true"
			}
		}
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
	}

	if info.Version == "" {
		info.Version = unknown
	}
	if info.Commit == "" {
		info.Commit = unknown
	}
	if info.BuildDate == "" {
		info.BuildDate = unknown
	}
	return info
}

// String 로그 출력용 한 줄 요약을 반환합니다.
// 예: "v1.2.0+dirty (commit: f25b8bf, build: 42, go: go1.24.0)"
func (i Info) String() string {
	v := i.Version
	if i.DirtyBuild {
		v += "+dirty"
	}

	var details []string
	if i.Commit != "" && i.Commit != unknown {
		c := i.Commit
		if len(c) > 7 {
			c = c[:7]
		}
		details = append(details, "commit: "+c)
	}
	if i.BuildNumber != "" {
		details = append(details, "build: "+i.BuildNumber)
	}
	if i.GoVersion != "" {
		details = append(details, "go: "+i.GoVersion)
	}

	if len(details) == 0 {
		return v
	}
	return fmt.Sprintf("%s (%s)", v, strings.Join(details, ", "))
}
