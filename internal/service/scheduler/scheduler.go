// Package scheduler 이미지 다운로드용 임시 디렉터리를 주기적으로 정리하는 서비스를 제공합니다.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/darkkaiser/miniapp-server/internal/service/notification"
	"github.com/darkkaiser/miniapp-server/pkg/cronx"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/robfig/cron/v3"
)

// component Scheduler 서비스의 로깅용 컴포넌트 이름
const component = "scheduler.service"

// defaultMaxAge 설정이 없을 때 삭제 대상으로 판단하는 임시 디렉터리의 최소 경과 시간
const defaultMaxAge = time.Hour

// alertMsgSweepFailed 정리 실패 시 운영자에게 보내는 알림 (원인)
const alertMsgSweepFailed = "임시 디렉터리 정리에 실패했습니다. 디스크 사용량을 확인하세요.\n원인: %v"

// Sweeper 오래된 임시 디렉터리를 삭제합니다.
type Sweeper interface {
	Sweep(maxAge time.Duration, now time.Time) (int, error)
}

// Scheduler 비정상 종료 등으로 남은 배치 임시 디렉터리를 Cron 스케줄에 맞춰 정리합니다.
type Scheduler struct {
	sweeper  Sweeper
	notifier notification.Notifier
	timeSpec string
	maxAge   time.Duration

	now func() time.Time

	cron *cron.Cron

	running   bool
	runningMu sync.Mutex
}

// NewService 새로운 Scheduler 서비스 인스턴스를 생성합니다.
func NewService(sweeper Sweeper, notifier notification.Notifier, timeSpec string, maxAge time.Duration) *Scheduler {
	if sweeper == nil {
		panic("Sweeper는 필수입니다")
	}
	if notifier == nil {
		panic("Notifier는 필수입니다")
	}
	if maxAge <= 0 {
		maxAge = defaultMaxAge
	}

	return &Scheduler{
		sweeper:  sweeper,
		notifier: notifier,
		timeSpec: timeSpec,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Start 시작 시점에 한 번 정리를 수행한 뒤 Cron 스케줄을 등록합니다.
//
// serviceStopCtx가 취소되면 실행 중인 정리 작업이 끝날 때까지 기다린 뒤
// serviceStopWG.Done()을 호출합니다.
func (s *Scheduler) Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	applog.WithComponent(component).Info("서비스 시작 진입: Scheduler 서비스 초기화 프로세스를 시작합니다")

	if s.running {
		serviceStopWG.Done()
		applog.WithComponent(component).Warn("Scheduler 서비스가 이미 실행 중입니다 (중복 호출)")
		return nil
	}

	// SkipIfStillRunning: 이전 정리가 끝나지 않았으면 이번 실행을 건너뜁니다.
	c := cron.New(
		cron.WithParser(cronx.StandardParser()),
		cron.WithLogger(cron.VerbosePrintfLogger(applog.StandardLogger())),
		cron.WithChain(
			cron.Recover(cron.VerbosePrintfLogger(applog.StandardLogger())),
			cron.SkipIfStillRunning(cron.VerbosePrintfLogger(applog.StandardLogger())),
		),
	)
	if _, err := c.AddFunc(s.timeSpec, s.sweep); err != nil {
		serviceStopWG.Done()
		return NewErrInvalidCronSpec(s.timeSpec, err)
	}

	s.sweep()

	s.cron = c
	s.cron.Start()
	s.running = true

	applog.WithComponentAndFields(component, applog.Fields{
		"time_spec": s.timeSpec,
		"max_age":   s.maxAge.String(),
	}).Info("서비스 시작 완료: Scheduler 서비스가 정상적으로 초기화되었습니다")

	go func() {
		defer serviceStopWG.Done()

		<-serviceStopCtx.Done()

		s.Stop()
	}()

	return nil
}

// Stop 실행 중인 스케줄러를 중지합니다.
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return
	}

	applog.WithComponent(component).Info("종료 절차 진입: Scheduler 서비스 중지 시그널을 수신했습니다")

	if s.cron != nil {
		<-s.cron.Stop().Done()
	}

	s.cron = nil
	s.running = false

	applog.WithComponent(component).Info("Scheduler 서비스 종료 완료")
}

func (s *Scheduler) sweep() {
	start := time.Now()

	removed, err := s.sweeper.Sweep(s.maxAge, s.now())
	if err != nil {
		applog.WithComponentAndFields(component, applog.Fields{
			"error": err,
		}).Error("임시 디렉터리 정리 실패")

		s.notifier.Notify(fmt.Sprintf(alertMsgSweepFailed, err))
		return
	}

	entry := applog.WithComponentAndFields(component, applog.Fields{
		"removed":  removed,
		"duration": time.Since(start).String(),
	})
	if removed > 0 {
		entry.Info("오래된 임시 디렉터리를 정리했습니다")
	} else {
		entry.Debug("정리할 임시 디렉터리가 없습니다")
	}
}
