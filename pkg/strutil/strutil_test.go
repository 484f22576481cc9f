package strutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSensitiveData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"빈 문자열", "", ""},
		{"3자 이하", "abc", "***"},
		{"12자 이하", "wx1234567890", "wx12***"},
		{"긴 토큰", "ACCESS_TOKEN_0123456789", "ACCE***6789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskSensitiveData(tt.input))
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitAndTrim(" a, b ,,c ", ","))
	assert.Nil(t, SplitAndTrim(" , ,", ","))
	assert.Nil(t, SplitAndTrim("", ","))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"짧은 문자열은 그대로", "errcode", 10, "errcode"},
		{"ASCII 자르기", "abcdefgh", 3, "abc..."},
		{"멀티바이트 자르기", "图片非法内容", 2, "图片..."},
		{"0 이하", "abc", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.max))
		})
	}
}
