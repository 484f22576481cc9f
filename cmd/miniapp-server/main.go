package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/darkkaiser/miniapp-server/internal/config"
	"github.com/darkkaiser/miniapp-server/internal/pkg/version"
	"github.com/darkkaiser/miniapp-server/internal/service/contract"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/spf13/pflag"
)

// @title MiniApp Server API
// @version 1.0
// @description WeChat 미니앱 등록, 상태 관리, 콘텐츠 검사 API입니다.
// @description
// @description ## 인증 방법
// @description 설정 파일(miniapp-server.json)의 admins에 등록된 관리자 키를 X-Admin-Key 헤더로 전달합니다.
// @description 등록되지 않은 키는 401 Unauthorized로 거부됩니다.

// @contact.name DarkKaiser
// @contact.url https://github.com/DarkKaiser

// @BasePath /

// @securityDefinitions.apikey AdminKeyAuth
// @in header
// @name X-Admin-Key
// @description 관리자 인증 키

const banner = `
  __  __  _         _                             ____
 |  \/  |(_) _ __  (_)  __ _  _ __   _ __        / ___|   ___  _ __ __   __  ___  _ __
 | |\/| || || '_ \ | | / _' || '_ \ | '_ \  ____ \___ \  / _ \| '__|\ \ / / / _ \| '__|
 | |  | || || | | || || (_| || |_) || |_) ||____| ___) ||  __/| |    \ V / |  __/| |
 |_|  |_||_||_| |_||_| \__,_|| .__/ | .__/       |____/  \___||_|     \_/   \___||_|
                             |_|    |_|                                         %s
--------------------------------------------------------------------------------
`

func main() {
	flags := pflag.NewFlagSet(config.AppName, pflag.ExitOnError)
	configFile := flags.StringP("config", "c", config.DefaultFilename, "설정 파일 경로")
	showVersion := flags.BoolP("version", "v", false, "버전 정보를 출력하고 종료합니다")
	_ = flags.Parse(os.Args[1:])

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}

	os.Exit(run(*configFile))
}

func run(configFile string) int {
	// 1. 환경설정 로드 (로그 설정에 필요하므로 가장 먼저 수행한다)
	appConfig, err := config.LoadWithFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 환경설정 로드 실패: %v\n", err)
		return 1
	}

	// 2. 로그 시스템 초기화
	logOpts := applog.NewProductionOptions(config.AppName)
	if appConfig.Debug {
		logOpts = applog.NewDevelopmentOptions(config.AppName)
	}
	appLogCloser, err := applog.Setup(logOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] 로그 시스템 초기화 실패. 서버 구동을 중단합니다. (Cause: %v)\n", err)
		return 1
	}
	defer appLogCloser.Close()

	applog.SetDebugMode(appConfig.Debug)

	buildInfo := version.Get()
	fmt.Printf(banner, buildInfo.Version)

	applog.WithComponentAndFields("main", applog.Fields{
		"version": buildInfo.String(),
		"env":     map[bool]string{true: "development", false: "production"}[appConfig.Debug],
	}).Info("서버 초기화 시작")

	for _, warning := range appConfig.VerifyRecommendations() {
		applog.WithComponent("main").Warn(warning)
	}

	// 3. 서비스 구성
	services, closers, err := build(appConfig, buildInfo)
	if err != nil {
		applog.WithComponentAndFields("main", applog.Fields{
			"error": err,
		}).Error("서비스 구성 실패")
		return 1
	}
	defer closeAll(closers)

	// 4. 서비스 시작
	serviceStopCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	serviceStopWG := &sync.WaitGroup{}

	if err := contract.StartAll(serviceStopCtx, cancel, serviceStopWG, services...); err != nil {
		applog.WithComponentAndFields("main", applog.Fields{
			"error": err,
		}).Error("서비스 초기화 실패로 프로그램을 종료합니다")
		return 1
	}

	termC := make(chan os.Signal, 1)
	signal.Notify(termC, syscall.SIGINT, syscall.SIGTERM)

	applog.WithComponent("main").Info("서버 가동 완료")

	<-termC

	applog.WithComponent("main").Info("종료 시그널 수신: 서비스를 중지합니다")
	cancel()
	serviceStopWG.Wait()

	return 0
}

// closeAll 생성의 역순으로 자원을 해제합니다.
func closeAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			applog.WithComponentAndFields("main", applog.Fields{
				"error": err,
			}).Warn("자원 해제 중 오류가 발생했습니다")
		}
	}
}
