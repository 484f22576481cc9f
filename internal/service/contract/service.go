// Package contract 서비스 간에 공유하는 생명주기 계약을 정의합니다.
package contract

import (
	"context"
	"sync"
)

// Service 백그라운드에서 실행되는 서비스입니다.
//
// Start는 즉시 반환해야 하며, serviceStopCtx가 취소되어 서비스가 완전히 종료되면
// serviceStopWG.Done()을 정확히 한 번 호출합니다. 시작에 실패해 에러를 반환하는
// 경우에도 Done()은 호출되어야 합니다.
type Service interface {
	Start(serviceStopCtx context.Context, serviceStopWG *sync.WaitGroup) error
}

// StartAll 서비스를 순서대로 시작합니다.
//
// 하나라도 시작에 실패하면 이미 시작된 서비스를 모두 중지하고 종료를 기다린 뒤
// 에러를 반환합니다.
func StartAll(serviceStopCtx context.Context, cancel context.CancelFunc, serviceStopWG *sync.WaitGroup, services ...Service) error {
	for _, s := range services {
		serviceStopWG.Add(1)
		if err := s.Start(serviceStopCtx, serviceStopWG); err != nil {
			cancel()
			serviceStopWG.Wait()
			return err
		}
	}
	return nil
}
