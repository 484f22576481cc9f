package moderation

import (
	"github.com/iancoleman/strcase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	checkKindText  = "text"
	checkKindImage = "image"

	outcomeAllowed  = "allowed"
	outcomeCanceled = "canceled"
)

type metrics struct {
	checksTotal   *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	imagesFetched prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "miniapp",
			Subsystem: "moderation",
			Name:      "checks_total",
			Help:      "검수 요청 수 (종류, 결과별)",
		}, []string{"kind", "outcome"}),

		checkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "miniapp",
			Subsystem: "moderation",
			Name:      "check_duration_seconds",
			Help:      "검수 요청 처리 시간",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),

		imagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "miniapp",
			Subsystem: "moderation",
			Name:      "images_fetched_total",
			Help:      "검수를 위해 내려받은 이미지 수",
		}),
	}
}

// outcomeLabel 에러를 메트릭 라벨 값(snake_case)으로 변환합니다.
func outcomeLabel(err error) string {
	if err == nil {
		return outcomeAllowed
	}
	if modErr, ok := AsModerationError(err); ok {
		return strcase.ToSnake(modErr.Kind.String())
	}
	return outcomeCanceled
}
