// Package strutil 문자열 처리 유틸리티를 제공합니다.
package strutil

import (
	"strings"
	"unicode/utf8"
)

// MaskSensitiveData 로그에 남길 토큰, 시크릿 등을 마스킹합니다.
//
//   - 3자 이하: 전체 마스킹
//   - 12자 이하: 앞 4자만 노출
//   - 그 외: 앞 4자와 뒤 4자만 노출
func MaskSensitiveData(data string) string {
	if data == "" {
		return ""
	}
	if len(data) <= 3 {
		return "***"
	}
	if len(data) <= 12 {
		return data[:4] + "***"
	}
	return data[:4] + "***" + data[len(data)-4:]
}

// SplitAndTrim 구분자로 나눈 뒤 공백을 제거하고 빈 항목을 버립니다.
// 남는 항목이 없으면 nil을 반환합니다.
func SplitAndTrim(s, sep string) []string {
	var result []string
	for _, token := range strings.Split(s, sep) {
		if token = strings.TrimSpace(token); token != "" {
			result = append(result, token)
		}
	}
	return result
}

// Truncate 문자열을 최대 maxRunes 글자로 자르고, 잘린 경우 "..."을 덧붙입니다.
// 멀티바이트 문자가 중간에서 잘리지 않도록 rune 단위로 계산합니다.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}

	i := 0
	for pos := range s {
		if i == maxRunes {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
