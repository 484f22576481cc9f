// Package moderation 텍스트와 이미지를 WeChat 콘텐츠 보안 API로 검수하는 파이프라인을 제공합니다.
//
// 처리 순서는 TokenProvider → RemoteFetcher(이미지) → ModerationClient이며,
// 첫 번째 위반이나 실패에서 즉시 중단합니다. 파이프라인 내부에서는 어떤 단계도 재시도하지 않습니다.
package moderation

import (
	"context"
	"io"
	"time"

	"github.com/darkkaiser/miniapp-server/internal/service/moderation/asset"
	"github.com/darkkaiser/miniapp-server/internal/service/moderation/provider"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
)

// component 검수 파이프라인의 로깅용 컴포넌트 이름
const component = "moderation.pipeline"

// defaultStageTimeout 단계별 타임아웃이 지정되지 않았을 때 사용하는 기본값
const defaultStageTimeout = 10 * time.Second

// TokenProvider 애플리케이션의 액세스 토큰을 발급합니다.
type TokenProvider interface {
	AccessToken(ctx context.Context, appID uint64) (string, error)
}

// Client 검수 제공자 호출을 추상화합니다.
type Client interface {
	CheckText(ctx context.Context, token, text string) (provider.Verdict, error)
	CheckImage(ctx context.Context, token string, image io.Reader, filename string) (provider.Verdict, error)
}

// Batch 한 번의 이미지 검수에서 내려받은 파일들의 수명을 관리합니다.
type Batch interface {
	Fetch(ctx context.Context, reference string) (*asset.Asset, error)
	Close() error
}

// BatchOpener 이미지 배치를 생성합니다.
type BatchOpener interface {
	OpenBatch(ctx context.Context) (Batch, error)
}

type sourceOpener struct {
	source *asset.Source
}

func (o sourceOpener) OpenBatch(ctx context.Context) (Batch, error) {
	return o.source.NewBatch(ctx)
}

// NewBatchOpener asset.Source를 BatchOpener로 감쌉니다.
func NewBatchOpener(source *asset.Source) BatchOpener {
	return sourceOpener{source: source}
}

// Config 파이프라인 설정입니다. 0 값 타임아웃은 기본값(10초)을 사용합니다.
type Config struct {
	TokenTimeout    time.Duration
	FetchTimeout    time.Duration
	ProviderTimeout time.Duration

	// Registerer 메트릭을 등록할 레지스트리 (nil이면 prometheus.DefaultRegisterer)
	Registerer prometheus.Registerer
}

// Pipeline 검수 파이프라인입니다. 호출 간에 공유하는 가변 상태가 없으므로 동시에 사용해도 안전합니다.
type Pipeline struct {
	tokens TokenProvider
	client Client
	assets BatchOpener

	tokenTimeout    time.Duration
	fetchTimeout    time.Duration
	providerTimeout time.Duration

	metrics *metrics
}

// NewPipeline 새로운 Pipeline을 생성합니다.
func NewPipeline(cfg Config, tokens TokenProvider, client Client, assets BatchOpener) *Pipeline {
	if tokens == nil {
		panic("TokenProvider는 필수입니다")
	}
	if client == nil {
		panic("Client는 필수입니다")
	}
	if assets == nil {
		panic("BatchOpener는 필수입니다")
	}

	reg := cfg.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	return &Pipeline{
		tokens: tokens,
		client: client,
		assets: assets,

		tokenTimeout:    orDefault(cfg.TokenTimeout),
		fetchTimeout:    orDefault(cfg.FetchTimeout),
		providerTimeout: orDefault(cfg.ProviderTimeout),

		metrics: newMetrics(reg),
	}
}

func orDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultStageTimeout
	}
	return d
}

// CheckText 텍스트를 검수합니다. 통과하면 nil을 반환합니다.
//
// 반환 에러는 *ModerationError(CredentialError, ProviderError, PolicyViolation/TextViolation)이거나
// 호출자 컨텍스트의 취소 에러입니다.
func (p *Pipeline) CheckText(ctx context.Context, appID uint64, text string) (err error) {
	defer p.observe(checkKindText, time.Now(), &err)

	token, err := p.accessToken(ctx, appID)
	if err != nil {
		return err
	}

	pctx, cancel := context.WithTimeout(ctx, p.providerTimeout)
	verdict, err := p.client.CheckText(pctx, token, text)
	cancel()
	if err != nil {
		return NewErrProvider(0, err)
	}

	if !verdict.IsAllowed() {
		applog.WithComponentAndFields(component, applog.Fields{
			"app_id":  appID,
			"errcode": verdict.ErrCode,
		}).Info("텍스트 검수 거부: 정책 위반 콘텐츠입니다")

		return NewErrTextViolation()
	}

	return nil
}

// CheckImages 이미지 참조 목록을 순서대로 검수합니다. 모두 통과하면 nil을 반환합니다.
//
// 토큰은 배치당 한 번만 발급받으며, 이미지는 하나씩 내려받아 검사한 뒤 다음 이미지로 넘어갑니다.
// 내려받기 실패나 위반이 발생하면 이후 이미지는 내려받지도 검사하지도 않습니다.
// 배치 임시 디렉터리는 성공, 실패와 관계없이 반환 전에 삭제됩니다.
// 빈 목록은 토큰 발급이나 배치 생성 없이 통과합니다.
func (p *Pipeline) CheckImages(ctx context.Context, appID uint64, references []string) (err error) {
	defer p.observe(checkKindImage, time.Now(), &err)

	if len(references) == 0 {
		return nil
	}

	token, err := p.accessToken(ctx, appID)
	if err != nil {
		return err
	}

	batch, err := p.assets.OpenBatch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return NewErrFetchFailed(0, err)
	}
	defer func() {
		_ = batch.Close()
	}()

	for i, reference := range references {
		if err := ctx.Err(); err != nil {
			return err
		}

		position := i + 1
		if err := p.checkImage(ctx, batch, token, reference, position); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"app_id":    appID,
				"position":  position,
				"total":     len(references),
				"reference": reference,
				"error":     err,
			}).Info("이미지 검수 중단: 남은 이미지는 처리하지 않습니다")

			return err
		}
	}

	return nil
}

func (p *Pipeline) checkImage(ctx context.Context, batch Batch, token, reference string, position int) error {
	fctx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	a, err := batch.Fetch(fctx, reference)
	cancel()
	if err != nil {
		return NewErrFetchFailed(position, err)
	}
	p.metrics.imagesFetched.Inc()

	image, err := a.Open()
	if err != nil {
		return NewErrFetchFailed(position, err)
	}
	defer image.Close()

	pctx, cancel := context.WithTimeout(ctx, p.providerTimeout)
	defer cancel()

	verdict, err := p.client.CheckImage(pctx, token, image, reference)
	if err != nil {
		return NewErrProvider(position, err)
	}

	switch verdict.Outcome {
	case provider.Allowed:
		return nil
	case provider.RejectedSpecificImage:
		return NewErrImageViolation(SpecificImageViolation, position)
	default:
		return NewErrImageViolation(GenericImageViolation, position)
	}
}

func (p *Pipeline) accessToken(ctx context.Context, appID uint64) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, p.tokenTimeout)
	defer cancel()

	token, err := p.tokens.AccessToken(tctx, appID)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", NewErrCredential(err)
	}
	return token, nil
}

func (p *Pipeline) observe(kind string, start time.Time, err *error) {
	p.metrics.checksTotal.WithLabelValues(kind, outcomeLabel(*err)).Inc()
	p.metrics.checkDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
