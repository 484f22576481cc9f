package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string   `validate:"required,max=5" korean:"이름"`
	Count  int      `validate:"min=1"`
	Images []string `validate:"max=2"`
	Link   string   `validate:"omitempty,url" korean:"링크"`
	ID     uint64   `validate:"gt=0" korean:"ID"`
}

func TestStructAndFormatError(t *testing.T) {
	valid := sample{Name: "abc", Count: 1, ID: 1}

	tests := []struct {
		name    string
		modify  func(s *sample)
		message string
	}{
		{name: "성공: 모든 필드가 올바름", modify: func(s *sample) {}},
		{name: "실패: required", modify: func(s *sample) { s.Name = "" }, message: "이름는 필수입니다"},
		{name: "실패: 문자열 max", modify: func(s *sample) { s.Name = "abcdef" }, message: "이름는 최대 5자까지 입력 가능합니다"},
		{name: "실패: 숫자 min", modify: func(s *sample) { s.Count = 0 }, message: "Count는 최소 1 이상이어야 합니다"},
		{name: "실패: 슬라이스 max", modify: func(s *sample) { s.Images = []string{"a", "b", "c"} }, message: "Images는 최대 2까지 입력 가능합니다"},
		{name: "실패: url", modify: func(s *sample) { s.Link = "not a url" }, message: "링크는 올바른 URL 형식이어야 합니다"},
		{name: "실패: gt", modify: func(s *sample) { s.ID = 0 }, message: "ID는 0보다 커야 합니다"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.modify(&s)

			err := Struct(s)
			if tt.message == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.message, FormatError(err))
		})
	}
}

func TestFormatError_NonValidationError(t *testing.T) {
	assert.Equal(t, "", FormatError(nil))
	assert.Equal(t, "boom", FormatError(errors.New("boom")))
}
