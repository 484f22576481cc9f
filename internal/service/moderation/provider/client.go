// Package provider WeChat 콘텐츠 보안 API(msg_sec_check, img_sec_check) 클라이언트를 제공합니다.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/darkkaiser/miniapp-server/internal/pkg/fetcher"
	applog "github.com/darkkaiser/miniapp-server/pkg/log"
	"github.com/darkkaiser/miniapp-server/pkg/strutil"
	"github.com/tidwall/gjson"
)

// component 검수 제공자 클라이언트의 로깅용 컴포넌트 이름
const component = "moderation.provider"

const (
	// DefaultTextEndpoint WeChat 텍스트 검사 API
	DefaultTextEndpoint = "https://api.weixin.qq.com/wxa/msg_sec_check"

	// DefaultImageEndpoint WeChat 이미지 검사 API
	DefaultImageEndpoint = "https://api.weixin.qq.com/wxa/img_sec_check"

	// mediaFieldName 이미지 검사 요청의 multipart 파트 이름
	mediaFieldName = "media"

	// specificImageErrCode 금지 콘텐츠로 분류된 이미지의 응답 코드
	specificImageErrCode = 87014

	// maxLoggedResponseRunes 로그에 남길 응답 본문의 최대 길이
	maxLoggedResponseRunes = 512
)

// Client WeChat 콘텐츠 보안 API를 호출합니다.
//
// 하나의 Client(와 내부 Fetcher 체인)를 프로세스 전체에서 공유하며, 커넥션 풀을 재사용합니다.
// 모든 호출은 POST이므로 Fetcher 체인에 RetryFetcher가 있어도 재시도되지 않습니다.
type Client struct {
	fetcher fetcher.Fetcher

	textEndpoint  string
	imageEndpoint string
}

// Config 클라이언트 설정입니다. 비어 있는 엔드포인트는 기본값을 사용합니다.
type Config struct {
	TextEndpoint  string
	ImageEndpoint string
}

// NewClient 새로운 Client를 생성합니다.
func NewClient(cfg Config, f fetcher.Fetcher) *Client {
	if f == nil {
		panic("Fetcher는 필수입니다")
	}
	if cfg.TextEndpoint == "" {
		cfg.TextEndpoint = DefaultTextEndpoint
	}
	if cfg.ImageEndpoint == "" {
		cfg.ImageEndpoint = DefaultImageEndpoint
	}

	return &Client{
		fetcher:       f,
		textEndpoint:  cfg.TextEndpoint,
		imageEndpoint: cfg.ImageEndpoint,
	}
}

type textRequest struct {
	Content string `json:"content"`
}

// CheckText 텍스트를 검사합니다.
//
// 빈 응답, errcode가 없거나 0인 응답은 통과로 처리하고, 그 외 errcode는 모두 거부로 처리합니다.
// 전송 실패, 2xx 이외의 상태 코드, 시간 초과는 에러로 반환합니다.
func (c *Client) CheckText(ctx context.Context, token, text string) (Verdict, error) {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(textRequest{Content: text}); err != nil {
		return Verdict{}, newErrEncodeRequest(err)
	}

	respBody, err := c.post(ctx, c.textEndpoint, token, "application/json; charset=utf-8", &body)
	if err != nil {
		return Verdict{}, err
	}

	code, msg, ok := parseResult(respBody)
	if !ok || code == 0 {
		return Verdict{Outcome: Allowed, ErrCode: code, ErrMsg: msg}, nil
	}

	applog.WithComponentAndFields(component, applog.Fields{
		"errcode": code,
		"errmsg":  msg,
	}).Info("텍스트 검사 거부: 검수 제공자가 텍스트를 거부했습니다")

	return Verdict{Outcome: RejectedText, ErrCode: code, ErrMsg: msg}, nil
}

// CheckImage 이미지를 검사합니다. filename은 multipart 파트의 파일 이름으로 전달됩니다.
//
// errcode 87014는 금지 콘텐츠, 그 외 0이 아닌 errcode는 일반 검사 실패로 분류합니다.
// 판정과 관계없이 응답 원문을 Info 레벨로 기록합니다.
func (c *Client) CheckImage(ctx context.Context, token string, image io.Reader, filename string) (Verdict, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(mediaFieldName, filename)
	if err != nil {
		return Verdict{}, newErrEncodeRequest(err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return Verdict{}, newErrReadImage(err, filename)
	}
	if err := mw.Close(); err != nil {
		return Verdict{}, newErrEncodeRequest(err)
	}

	respBody, err := c.post(ctx, c.imageEndpoint, token, mw.FormDataContentType(), &body)
	if err != nil {
		return Verdict{}, err
	}

	code, msg, _ := parseResult(respBody)

	applog.WithComponentAndFields(component, applog.Fields{
		"filename": filename,
		"errcode":  code,
		"errmsg":   msg,
		"response": strutil.Truncate(string(respBody), maxLoggedResponseRunes),
	}).Info("이미지 검사 결과 수신")

	switch {
	case code == 0:
		return Verdict{Outcome: Allowed, ErrCode: code, ErrMsg: msg}, nil
	case code == specificImageErrCode:
		return Verdict{Outcome: RejectedSpecificImage, ErrCode: code, ErrMsg: msg}, nil
	default:
		return Verdict{Outcome: RejectedGenericImage, ErrCode: code, ErrMsg: msg}, nil
	}
}

func (c *Client) post(ctx context.Context, endpoint, token, contentType string, body *bytes.Buffer) ([]byte, error) {
	target, err := withAccessToken(endpoint, token)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, fetcher.NewErrInvalidRequest(err, target)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, newErrRequestFailed(err, fetcher.RedactURL(req.URL))
	}
	defer fetcher.DrainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newErrUnexpectedStatus(resp.StatusCode, fetcher.RedactURL(req.URL))
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newErrReadResponse(err)
	}
	return b, nil
}

func withAccessToken(endpoint, token string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", newErrInvalidEndpoint(err, endpoint)
	}
	q := u.Query()
	q.Set("access_token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// parseResult 응답에서 errcode와 errmsg를 읽습니다.
//
// 빈 본문, JSON이 아닌 본문, errcode가 없는 객체는 ok=false로 반환하며 호출자는 이를 통과로 취급합니다.
func parseResult(body []byte) (code int64, msg string, ok bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return 0, "", false
	}
	if !gjson.ValidBytes(trimmed) {
		applog.WithComponentAndFields(component, applog.Fields{
			"response": strutil.Truncate(string(trimmed), maxLoggedResponseRunes),
		}).Warn("검수 응답 해석 불가: JSON이 아닌 응답을 통과로 처리합니다")
		return 0, "", false
	}

	result := gjson.ParseBytes(trimmed)
	errcode := result.Get("errcode")
	if !errcode.Exists() {
		return 0, result.Get("errmsg").String(), false
	}
	return errcode.Int(), result.Get("errmsg").String(), true
}
