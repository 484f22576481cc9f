// Package system 인증이 필요 없는 시스템 엔드포인트(헬스체크, 버전 정보) 핸들러를 제공합니다.
package system

import (
	"net/http"
	"time"

	"github.com/darkkaiser/miniapp-server/internal/pkg/version"
	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	"github.com/darkkaiser/miniapp-server/internal/service/api/model/system"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// healthStatusHealthy 헬스체크 상태: 정상
const healthStatusHealthy = "healthy"

// Handler 시스템 엔드포인트 핸들러
type Handler struct {
	buildInfo version.Info

	serverStartTime time.Time
}

// NewHandler Handler 인스턴스를 생성합니다.
func NewHandler(buildInfo version.Info) *Handler {
	return &Handler{
		buildInfo:       buildInfo,
		serverStartTime: time.Now(),
	}
}

// HealthCheckHandler godoc
// @Summary 서버 헬스체크
// @Description 서버 상태와 가동 시간을 반환합니다. 인증 없이 호출 가능합니다.
// @Tags System
// @Produce json
// @Success 200 {object} system.HealthResponse "헬스체크 결과"
// @Router /health [get]
func (h *Handler) HealthCheckHandler(c echo.Context) error {
	applog.WithComponentAndFields(constants.ComponentHandler, applog.Fields{
		"endpoint":  "/health",
		"remote_ip": c.RealIP(),
	}).Debug("헬스체크 요청")

	return c.JSON(http.StatusOK, system.HealthResponse{
		Status: healthStatusHealthy,
		Uptime: int64(time.Since(h.serverStartTime).Seconds()),
	})
}

// VersionHandler godoc
// @Summary 서버 버전 정보
// @Description 버전, 커밋 해시, 빌드 날짜, 빌드 번호, Go 버전을 반환합니다.
// @Tags System
// @Produce json
// @Success 200 {object} system.VersionResponse "버전 정보"
// @Router /version [get]
func (h *Handler) VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, system.VersionResponse{
		Version:     h.buildInfo.Version,
		Commit:      h.buildInfo.Commit,
		BuildDate:   h.buildInfo.BuildDate,
		BuildNumber: h.buildInfo.BuildNumber,
		GoVersion:   h.buildInfo.GoVersion,
	})
}
