// Package token WeChat 액세스 토큰을 발급받아 캐시합니다.
package token

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/darkkaiser/miniapp-server/internal/config"
	"github.com/darkkaiser/miniapp-server/internal/pkg/fetcher"
	"github.com/darkkaiser/miniapp-server/internal/store"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/darkkaiser/miniapp-server/pkg/strutil"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

// component 토큰 발급기의 로깅용 컴포넌트 이름
const component = "token.provider"

const (
	// DefaultEndpoint WeChat 액세스 토큰 발급 API
	DefaultEndpoint = "https://api.weixin.qq.com/cgi-bin/token"

	// defaultExpiresIn 응답에 expires_in이 없을 때 사용하는 토큰 수명 (초)
	defaultExpiresIn = 7200

	// maxErrMsgRunes 에러 메시지에 포함할 errmsg의 최대 길이
	maxErrMsgRunes = 200

	// defaultIssueTimeout 공유 발급 요청의 제한 시간. 개별 호출자의 취소와는 무관하게 적용됩니다.
	defaultIssueTimeout = 30 * time.Second

	cacheKeyPrefix = "miniapp:token:"
)

// AppLookup 토큰 발급에 필요한 애플리케이션 자격 증명을 조회합니다.
type AppLookup interface {
	GetApplication(ctx context.Context, id uint64) (*store.Application, error)
}

// WeChatProvider client_credential 방식으로 액세스 토큰을 발급받습니다.
//
// 토큰은 expires_in - refreshMargin 동안 캐시하며, 같은 애플리케이션에 대한
// 동시 캐시 미스는 singleflight로 하나의 발급 요청으로 합칩니다.
// 합쳐진 발급은 호출자 컨텍스트에서 분리되어 실행되므로, 한 호출자가 취소되어도
// 같은 발급을 기다리는 다른 호출자는 영향을 받지 않습니다.
type WeChatProvider struct {
	apps    AppLookup
	fetcher fetcher.Fetcher
	cache   Cache

	endpoint      string
	refreshMargin time.Duration
	issueTimeout  time.Duration

	group singleflight.Group
}

// NewWeChatProvider 새로운 WeChatProvider를 생성합니다.
func NewWeChatProvider(endpoint string, refreshMargin time.Duration, apps AppLookup, f fetcher.Fetcher, c Cache) *WeChatProvider {
	if apps == nil {
		panic("AppLookup은 필수입니다")
	}
	if f == nil {
		panic("Fetcher는 필수입니다")
	}
	if c == nil {
		panic("Cache는 필수입니다")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &WeChatProvider{
		apps:          apps,
		fetcher:       f,
		cache:         c,
		endpoint:      endpoint,
		refreshMargin: refreshMargin,
		issueTimeout:  defaultIssueTimeout,
	}
}

// NewCache 설정에 맞는 토큰 캐시를 생성합니다.
func NewCache(cfg config.TokenConfig) (Cache, error) {
	switch cfg.Cache {
	case "", "memory":
		return NewMemoryCache(cfg.CacheSize), nil
	case "redis":
		return NewRedisCache(cfg.RedisURL, cfg.CacheSize)
	default:
		return nil, newErrUnsupportedCache(cfg.Cache)
	}
}

// AccessToken appID의 유효한 액세스 토큰을 반환합니다.
func (p *WeChatProvider) AccessToken(ctx context.Context, appID uint64) (string, error) {
	app, err := p.apps.GetApplication(ctx, appID)
	if err != nil {
		return "", err
	}

	key := cacheKey(app)
	if token, ok := p.cache.Get(ctx, key); ok {
		return token, nil
	}

	ch := p.group.DoChan(key, func() (any, error) {
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.issueTimeout)
		defer cancel()

		if token, ok := p.cache.Get(ictx, key); ok {
			return token, nil
		}
		return p.issue(ictx, app, key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			applog.WithComponentAndFields(component, applog.Fields{
				"app_id": appID,
			}).Debug("동시 토큰 요청을 하나의 발급 요청으로 처리했습니다")
		}
		return res.Val.(string), nil

	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *WeChatProvider) issue(ctx context.Context, app *store.Application, key string) (string, error) {
	u, err := url.Parse(p.endpoint)
	if err != nil {
		return "", newErrInvalidEndpoint(err, p.endpoint)
	}
	q := u.Query()
	q.Set("grant_type", "client_credential")
	q.Set("appid", app.AppKey)
	q.Set("secret", app.AppSecret)
	u.RawQuery = q.Encode()

	resp, err := fetcher.Get(ctx, p.fetcher, u.String())
	if err != nil {
		return "", newErrTokenRequest(err, app.ID)
	}
	defer fetcher.DrainAndClose(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newErrTokenRequest(err, app.ID)
	}

	result := gjson.ParseBytes(body)
	if code := result.Get("errcode").Int(); code != 0 {
		applog.WithComponentAndFields(component, applog.Fields{
			"app_id":  app.ID,
			"app_key": strutil.MaskSensitiveData(app.AppKey),
			"errcode": code,
			"errmsg":  result.Get("errmsg").String(),
		}).Warn("액세스 토큰 발급 거부")

		return "", NewErrTokenRejected(app.ID, code, result.Get("errmsg").String())
	}

	token := result.Get("access_token").String()
	if token == "" {
		return "", NewErrMissingAccessToken(app.ID)
	}

	expiresIn := result.Get("expires_in").Int()
	if expiresIn <= 0 {
		expiresIn = defaultExpiresIn
	}

	ttl := time.Duration(expiresIn)*time.Second - p.refreshMargin
	if ttl > 0 {
		if err := p.cache.Set(ctx, key, token, ttl); err != nil {
			applog.WithComponentAndFields(component, applog.Fields{
				"app_id": app.ID,
				"error":  err,
			}).Warn("토큰 캐시 저장 실패: 다음 요청에서 다시 발급합니다")
		}
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"app_id":     app.ID,
		"app_key":    strutil.MaskSensitiveData(app.AppKey),
		"expires_in": expiresIn,
		"cache_ttl":  ttl.String(),
	}).Info("액세스 토큰 발급 완료")

	return token, nil
}

// cacheKey 앱 키가 바뀌면 이전 토큰을 쓰지 않도록 키에 앱 키를 포함합니다.
func cacheKey(app *store.Application) string {
	return cacheKeyPrefix + strconv.FormatUint(app.ID, 10) + ":" + app.AppKey
}

// Close 캐시 연결을 닫습니다.
func (p *WeChatProvider) Close() error {
	return p.cache.Close()
}
