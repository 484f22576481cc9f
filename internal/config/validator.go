package config

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// 에러 메시지에 Go 필드명 대신 설정 파일의 키(json 태그)가 표시되도록 합니다.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("cors_origin", validateCORSOrigin); err != nil {
		panic(fmt.Sprintf("초기화 치명적 오류: 'cors_origin' 커스텀 유효성 검사 함수 등록에 실패했습니다: %v", err))
	}

	return v
}

// validateCORSOrigin "*" 또는 Scheme://Host[:Port] 형식만 허용합니다. 경로, 쿼리, 후행 슬래시는 허용하지 않습니다.
func validateCORSOrigin(fl validator.FieldLevel) bool {
	origin := fl.Field().String()
	if origin == "*" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	return u.Path == "" && u.RawQuery == "" && u.Fragment == "" && u.User == nil
}

// checkStruct 구조체 태그 기반 검증을 수행하고, 첫 번째 위반 항목을 사람이 읽을 수 있는 메시지로 변환합니다.
func checkStruct(s any, contextName string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		switch fe.Tag() {
		case "cors_origin":
			return apperrors.Newf(apperrors.InvalidInput, "CORS Origin 형식이 올바르지 않습니다: '%v' (형식: Scheme://Host[:Port], 예: https://example.com)", fe.Value())
		case "file":
			return apperrors.Newf(apperrors.InvalidInput, "%s의 파일(%s)을 찾을 수 없습니다: '%v'", contextName, fe.Field(), fe.Value())
		case "required", "required_if", "required_with":
			return apperrors.Newf(apperrors.InvalidInput, "%s의 필수 항목(%s)이 설정되지 않았습니다", contextName, fe.Field())
		}
		return apperrors.Newf(apperrors.InvalidInput, "%s의 설정이 올바르지 않습니다: %s (조건: %s=%s, 값: '%v')", contextName, fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	}

	return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유효성 검증에 실패했습니다", contextName))
}

// checkUniqueField 슬라이스 원소의 지정 필드가 중복되지 않는지 검사합니다.
func checkUniqueField(data any, fieldName, contextName string) error {
	if err := validate.Var(data, "unique="+fieldName); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return apperrors.Newf(apperrors.InvalidInput, "중복된 %s %s가 존재합니다", contextName, fieldName)
		}
		return apperrors.Wrap(err, apperrors.InvalidInput, fmt.Sprintf("%s 유일성 검증에 실패했습니다", contextName))
	}
	return nil
}
