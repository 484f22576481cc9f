package api

import (
	"github.com/darkkaiser/miniapp-server/internal/service/api/handler/system"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterRoutes 인증이 필요 없는 전역 라우트를 등록합니다.
//
//   - 시스템 엔드포인트: /health, /version
//   - 메트릭: /metrics (Prometheus 텍스트 형식)
//   - API 문서: /swagger/*
func RegisterRoutes(e *echo.Echo, h *system.Handler, gatherer prometheus.Gatherer) {
	registerSystemRoutes(e, h)
	registerMetricsRoutes(e, gatherer)
	registerSwaggerRoutes(e)
}

func registerSystemRoutes(e *echo.Echo, h *system.Handler) {
	e.GET("/health", h.HealthCheckHandler)
	e.GET("/version", h.VersionHandler)
}

func registerMetricsRoutes(e *echo.Echo, gatherer prometheus.Gatherer) {
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

func registerSwaggerRoutes(e *echo.Echo) {
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(
		echoSwagger.URL("/swagger/doc.json"),
		echoSwagger.DeepLinking(true),
		echoSwagger.DocExpansion("list"),
	))
}
