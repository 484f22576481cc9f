package fetcher

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

const redacted = "xxxxx"

var (
	// sensitiveQueryKeys 로그에서 값을 가려야 하는 쿼리 파라미터 이름 (소문자)
	sensitiveQueryKeys = []string{
		"access_token", "token", "secret", "appsecret", "app_secret", "key", "app_key",
		"admin_key", "password", "signature", "client_secret", "refresh_token",
	}

	sensitiveQuerySuffixes = []string{"_token", "_secret", "_key", "_password"}

	sensitiveHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie"}
)

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	if slices.Contains(sensitiveQueryKeys, k) {
		return true
	}
	for _, suffix := range sensitiveQuerySuffixes {
		if strings.HasSuffix(k, suffix) {
			return true
		}
	}
	return false
}

// redactURL 사용자 정보와 민감한 쿼리 값을 가린 URL 문자열을 반환합니다.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}

	ru := *u
	if u.User != nil {
		ru.User = url.User(redacted)
	}
	if u.RawQuery != "" {
		q := ru.Query()
		for key := range q {
			if isSensitiveKey(key) {
				q.Set(key, redacted)
			}
		}
		ru.RawQuery = q.Encode()
	}
	return ru.String()
}

// RedactURL 로그에 기록할 수 있도록 민감 정보를 가린 URL 문자열을 반환합니다.
func RedactURL(u *url.URL) string {
	return redactURL(u)
}

func redactRawURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	return redactURL(u)
}

func redactHeaders(h http.Header) http.Header {
	if h == nil {
		return nil
	}
	masked := h.Clone()
	for _, key := range sensitiveHeaders {
		if masked.Get(key) != "" {
			masked.Set(key, redacted)
		}
	}
	return masked
}
