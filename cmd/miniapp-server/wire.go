package main

import (
	"io"

	"github.com/darkkaiser/miniapp-server/internal/config"
	"github.com/darkkaiser/miniapp-server/internal/pkg/fetcher"
	"github.com/darkkaiser/miniapp-server/internal/pkg/version"
	"github.com/darkkaiser/miniapp-server/internal/service/api"
	"github.com/darkkaiser/miniapp-server/internal/service/app"
	"github.com/darkkaiser/miniapp-server/internal/service/contract"
	"github.com/darkkaiser/miniapp-server/internal/service/moderation"
	"github.com/darkkaiser/miniapp-server/internal/service/moderation/asset"
	"github.com/darkkaiser/miniapp-server/internal/service/moderation/provider"
	"github.com/darkkaiser/miniapp-server/internal/service/notification"
	"github.com/darkkaiser/miniapp-server/internal/service/scheduler"
	"github.com/darkkaiser/miniapp-server/internal/service/token"
	"github.com/darkkaiser/miniapp-server/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// build 설정으로 저장소, 토큰 발급기, 검수 파이프라인, 서비스를 조립합니다.
//
// 반환하는 closer는 종료 시 생성의 역순으로 해제해야 합니다.
func build(appConfig *config.AppConfig, buildInfo version.Info) ([]contract.Service, []io.Closer, error) {
	var closers []io.Closer
	fail := func(err error) ([]contract.Service, []io.Closer, error) {
		closeAll(closers)
		return nil, nil, err
	}

	st, err := store.Open(appConfig.Store)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, st)

	// 토큰 발급과 이미지 다운로드는 멱등한 GET 요청이므로 재시도를 허용합니다.
	retry := appConfig.Moderation.Retry
	maxRetries := 0
	if retry.Enabled {
		maxRetries = retry.MaxRetries
	}

	tokenCache, err := token.NewCache(appConfig.Token)
	if err != nil {
		return fail(err)
	}
	tokenProvider := token.NewWeChatProvider(
		appConfig.Token.Endpoint,
		appConfig.Token.RefreshMargin,
		st,
		fetcher.NewFromConfig(fetcher.Config{
			Timeout:       appConfig.Token.Timeout,
			MaxRetries:    maxRetries,
			MinRetryDelay: retry.MinDelay,
			MaxRetryDelay: retry.MaxDelay,
			MaxBytes:      appConfig.Moderation.MaxResponseBytes,
		}),
		tokenCache,
	)
	closers = append(closers, tokenProvider)

	source, err := asset.NewSource(asset.Config{
		Origin:     appConfig.Moderation.Asset.Origin,
		ScratchDir: appConfig.Moderation.Asset.ScratchDir,
	}, fetcher.NewFromConfig(fetcher.Config{
		Timeout:            appConfig.Moderation.Asset.FetchTimeout,
		InsecureSkipVerify: appConfig.Moderation.Asset.InsecureSkipVerify,
		MaxRetries:         maxRetries,
		MinRetryDelay:      retry.MinDelay,
		MaxRetryDelay:      retry.MaxDelay,
		MaxBytes:           appConfig.Moderation.Asset.MaxBytes,
	}))
	if err != nil {
		return fail(err)
	}

	client := provider.NewClient(provider.Config{
		TextEndpoint:  appConfig.Moderation.TextEndpoint,
		ImageEndpoint: appConfig.Moderation.ImageEndpoint,
	}, fetcher.NewFromConfig(fetcher.Config{
		Timeout:  appConfig.Moderation.ProviderTimeout,
		MaxBytes: appConfig.Moderation.MaxResponseBytes,
	}))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pipeline := moderation.NewPipeline(moderation.Config{
		TokenTimeout:    appConfig.Token.Timeout,
		FetchTimeout:    appConfig.Moderation.Asset.FetchTimeout,
		ProviderTimeout: appConfig.Moderation.ProviderTimeout,
		Registerer:      registry,
	}, tokenProvider, client, moderation.NewBatchOpener(source))

	apps := app.NewService(appConfig.App, st)

	notifier, notifierService, err := notification.New(config.AppName, appConfig.Alert)
	if err != nil {
		return fail(err)
	}

	// 알림 서비스가 먼저 시작해야 다른 서비스의 시작 실패도 알릴 수 있습니다.
	var services []contract.Service
	if notifierService != nil {
		services = append(services, notifierService)
	}
	services = append(services,
		scheduler.NewService(source, notifier, appConfig.Moderation.Asset.SweepSpec, appConfig.Moderation.Asset.SweepMaxAge),
		api.NewService(appConfig, apps, pipeline, registry, notifier, buildInfo),
	)

	return services, closers, nil
}
