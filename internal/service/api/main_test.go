package api

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// WaitForServer 연결이 닫히기 전까지 남아 있을 수 있는 네트워크 대기 고루틴
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
