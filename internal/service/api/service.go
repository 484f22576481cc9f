// Package api 미니앱 관리 API 서버의 구성과 생명주기를 담당합니다.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	_ "github.com/darkkaiser/miniapp-server/docs"
	"github.com/darkkaiser/miniapp-server/internal/config"
	apiauth "github.com/darkkaiser/miniapp-server/internal/service/api/auth"
	"github.com/darkkaiser/miniapp-server/internal/service/api/constants"
	"github.com/darkkaiser/miniapp-server/internal/service/api/handler/system"
	v1 "github.com/darkkaiser/miniapp-server/internal/service/api/v1"
	v1handler "github.com/darkkaiser/miniapp-server/internal/service/api/v1/handler"
	"github.com/darkkaiser/miniapp-server/internal/service/notification"
	"github.com/darkkaiser/miniapp-server/internal/pkg/version"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Service 관리 API의 Echo 서버를 띄우고 내립니다.
//
// 리스너가 예기치 않게 닫히면 Notifier로 운영자에게 알립니다.
type Service struct {
	appConfig *config.AppConfig

	apps      v1handler.AppService
	moderator v1handler.Moderator
	gatherer  prometheus.Gatherer
	notifier  notification.Notifier

	buildInfo version.Info

	running   bool
	runningMu sync.Mutex
}

// NewService 필수 의존성이 nil이면 패닉합니다.
func NewService(appConfig *config.AppConfig, apps v1handler.AppService, moderator v1handler.Moderator, gatherer prometheus.Gatherer, notifier notification.Notifier, buildInfo version.Info) *Service {
	if appConfig == nil {
		panic(constants.PanicMsgAppConfigRequired)
	}
	if apps == nil {
		panic(constants.PanicMsgAppServiceRequired)
	}
	if moderator == nil {
		panic(constants.PanicMsgModeratorRequired)
	}
	if gatherer == nil {
		panic(constants.PanicMsgGathererRequired)
	}
	if notifier == nil {
		panic(constants.PanicMsgNotifierRequired)
	}

	return &Service{
		appConfig: appConfig,

		apps:      apps,
		moderator: moderator,
		gatherer:  gatherer,
		notifier:  notifier,

		buildInfo: buildInfo,
	}
}

// Start 서버를 백그라운드에서 띄우고 바로 반환합니다.
//
// serviceStopCtx가 취소되거나 리스너가 먼저 닫히면 정리를 마친 뒤 serviceStopWG.Done()을 호출합니다.
func (s *Service) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	logger := applog.WithComponent(constants.ComponentService)
	logger.Info(constants.LogMsgServiceStarting)

	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		serviceStopWG.Done()
		logger.Warn(constants.LogMsgServiceAlreadyStarted)
		return nil
	}
	s.running = true

	go s.serve(serviceStopCtx, serviceStopWG)

	logger.Info(constants.LogMsgServiceStarted)
	return nil
}

func (s *Service) serve(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) {
	defer serviceStopWG.Done()
	defer s.markStopped()

	e := s.newEcho()

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- s.listen(e)
	}()

	select {
	case err := <-listenErr:
		// 종료 요청 전에 리스너가 닫혔으므로 Shutdown은 필요 없습니다.
		s.reportListenExit(err)
		applog.WithComponent(constants.ComponentService).Error(constants.LogMsgServiceUnexpectedExit)
		return

	case <-serviceStopCtx.Done():
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopping)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
			"error": err,
		}).Error(constants.LogMsgServiceHTTPServerShutdownError)
	}

	s.reportListenExit(<-listenErr)
}

// newEcho 관리자 인증과 라우트가 모두 등록된 Echo 인스턴스를 만듭니다.
func (s *Service) newEcho() *echo.Echo {
	httpConfig := s.appConfig.HTTP

	e := NewHTTPServer(HTTPServerConfig{
		Debug:              s.appConfig.Debug,
		AllowOrigins:       httpConfig.AllowOrigins,
		BodyLimit:          httpConfig.BodyLimit,
		RequestTimeout:     httpConfig.RequestTimeout,
		RateLimitPerSecond: httpConfig.RateLimit.RequestsPerSecond,
		RateLimitBurst:     httpConfig.RateLimit.Burst,
		EnableHSTS:         httpConfig.TLSServer,
	})

	RegisterRoutes(e, system.NewHandler(s.buildInfo), s.gatherer)
	v1.RegisterRoutes(e,
		v1handler.NewHandler(s.apps, s.moderator, s.appConfig.Moderation.MaxImages),
		apiauth.NewAuthenticator(s.appConfig.Admins),
	)

	return e
}

// listen 리스너가 닫힐 때까지 블로킹됩니다.
func (s *Service) listen(e *echo.Echo) error {
	httpConfig := s.appConfig.HTTP
	address := fmt.Sprintf(":%d", httpConfig.ListenPort)

	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port": httpConfig.ListenPort,
		"tls":  httpConfig.TLSServer,
	}).Debug(constants.LogMsgServiceHTTPServerStarting)

	if httpConfig.TLSServer {
		return e.StartTLS(address, httpConfig.TLSCertFile, httpConfig.TLSKeyFile)
	}
	return e.Start(address)
}

// reportListenExit 정상 종료(http.ErrServerClosed)가 아니면 오류를 남기고 운영자에게 알립니다.
func (s *Service) reportListenExit(err error) {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceHTTPServerStopped)
		return
	}

	port := s.appConfig.HTTP.ListenPort
	applog.WithComponentAndFields(constants.ComponentService, applog.Fields{
		"port":  port,
		"error": err,
	}).Error(constants.LogMsgServiceHTTPServerFatalError)

	s.notifier.Notify(fmt.Sprintf(constants.AlertMsgHTTPServerFatalError, port, err))
}

func (s *Service) markStopped() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()

	applog.WithComponent(constants.ComponentService).Info(constants.LogMsgServiceStopped)
}
