// Package validation go-playground/validator 기반의 구조체 검증과 한글 에러 메시지 변환을 제공합니다.
package validation

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// get 초기화된 validator 인스턴스를 반환합니다.
func get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// 에러 메시지의 필드명으로 korean 태그를 우선 사용합니다.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("korean"); name != "" {
				return name
			}
			return fld.Name
		})
	})

	return validate
}

// Struct 구조체의 validate 태그를 기준으로 검증합니다.
func Struct(v any) error {
	return get().Struct(v)
}

// FormatError validator 에러를 한글 메시지로 변환합니다.
// 여러 필드가 실패한 경우 첫 번째 에러만 사용합니다.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrors) == 0 {
		return err.Error()
	}

	return formatFieldError(validationErrors[0])
}

func formatFieldError(fieldErr validator.FieldError) string {
	fieldName := fieldErr.Field()
	isString := fieldErr.Kind() == reflect.String

	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s는 필수입니다", fieldName)
	case "min":
		if isString {
			return fmt.Sprintf("%s는 최소 %s자 이상이어야 합니다", fieldName, fieldErr.Param())
		}
		return fmt.Sprintf("%s는 최소 %s 이상이어야 합니다", fieldName, fieldErr.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s는 최대 %s자까지 입력 가능합니다", fieldName, fieldErr.Param())
		}
		return fmt.Sprintf("%s는 최대 %s까지 입력 가능합니다", fieldName, fieldErr.Param())
	case "gt":
		return fmt.Sprintf("%s는 %s보다 커야 합니다", fieldName, fieldErr.Param())
	case "url", "http_url":
		return fmt.Sprintf("%s는 올바른 URL 형식이어야 합니다", fieldName)
	default:
		return fmt.Sprintf("%s 검증 실패: %s", fieldName, fieldErr.Tag())
	}
}
