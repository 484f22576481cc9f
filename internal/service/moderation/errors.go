package moderation

import (
	"errors"
	"fmt"

	apperrors "github.com/darkkaiser/miniapp-server/internal/pkg/errors"
)

// ErrorKind 검수 파이프라인이 반환하는 에러의 분류입니다.
type ErrorKind int

const (
	// CredentialError 액세스 토큰 발급 실패
	CredentialError ErrorKind = iota + 1

	// FetchFailed 원격 이미지 내려받기 실패
	FetchFailed

	// PolicyViolation 검수 제공자가 콘텐츠를 정책 위반으로 판정
	PolicyViolation

	// ProviderError 검수 제공자와의 통신 실패
	ProviderError
)

func (k ErrorKind) String() string {
	switch k {
	case CredentialError:
		return "CredentialError"
	case FetchFailed:
		return "FetchFailed"
	case PolicyViolation:
		return "PolicyViolation"
	case ProviderError:
		return "ProviderError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// apperrorType HTTP 계층에서 상태 코드를 결정할 때 사용하는 apperrors 타입입니다.
func (k ErrorKind) apperrorType() apperrors.ErrorType {
	switch k {
	case CredentialError:
		return apperrors.Unauthorized
	case FetchFailed:
		return apperrors.ExecutionFailed
	case PolicyViolation:
		return apperrors.InvalidInput
	case ProviderError:
		return apperrors.Unavailable
	default:
		return apperrors.Unknown
	}
}

// ViolationKind 정책 위반의 세부 분류입니다. PolicyViolation 에러에서만 의미가 있습니다.
type ViolationKind int

const (
	NoViolation ViolationKind = iota

	// TextViolation 텍스트 검사 거부
	TextViolation

	// SpecificImageViolation 이미지에 금지 콘텐츠가 포함됨 (제공자 코드 87014)
	SpecificImageViolation

	// GenericImageViolation 그 외 이미지 검사 실패
	GenericImageViolation
)

func (v ViolationKind) String() string {
	switch v {
	case NoViolation:
		return "NoViolation"
	case TextViolation:
		return "TextViolation"
	case SpecificImageViolation:
		return "SpecificImageViolation"
	case GenericImageViolation:
		return "GenericImageViolation"
	default:
		return fmt.Sprintf("ViolationKind(%d)", int(v))
	}
}

// 사용자에게 노출되는 고정 메시지입니다. 제공자 내부 코드는 포함하지 않습니다.
const (
	msgTextViolation          = "부적절한 내용은 게시할 수 없습니다. 건전한 인터넷 문화를 지켜 주세요."
	msgSpecificImageViolation = "허용되지 않는 이미지입니다."
	msgImageCheckFailed       = "이미지 검사 중 오류가 발생했습니다."
	msgFetchFailed            = "파일 업로드에 실패했습니다."
	msgCredentialError        = "액세스 토큰을 발급받지 못했습니다."
)

// ModerationError 검수 파이프라인의 실패를 나타냅니다.
//
// Position은 이미지 배치에서 문제가 된 항목의 1부터 시작하는 위치이며,
// 텍스트 검사나 배치 이전 단계의 실패에서는 0입니다.
type ModerationError struct {
	Kind      ErrorKind
	Violation ViolationKind
	Position  int

	cause error
}

func (e *ModerationError) Error() string {
	msg := "moderation: " + e.Kind.String()
	if e.Violation != NoViolation {
		msg += "(" + e.Violation.String() + ")"
	}
	if e.Position > 0 {
		msg += fmt.Sprintf(" at position %d", e.Position)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ModerationError) Unwrap() error {
	return e.cause
}

// UserMessage 최종 사용자에게 보여줄 고정 메시지를 반환합니다.
func (e *ModerationError) UserMessage() string {
	switch e.Kind {
	case CredentialError:
		return msgCredentialError
	case FetchFailed:
		return msgFetchFailed
	case ProviderError:
		return msgImageCheckFailed
	case PolicyViolation:
		switch e.Violation {
		case TextViolation:
			return msgTextViolation
		case SpecificImageViolation:
			return msgSpecificImageViolation
		}
		return msgImageCheckFailed
	}
	return msgImageCheckFailed
}

// newError 종류에 맞는 apperrors 타입으로 원인을 감싼 ModerationError를 생성합니다.
// cause가 nil이어도 apperrors 타입 판별이 가능하도록 항상 AppError를 체인에 포함합니다.
func newError(kind ErrorKind, violation ViolationKind, position int, cause error, message string) *ModerationError {
	var wrapped error
	if cause != nil {
		wrapped = apperrors.Wrap(cause, kind.apperrorType(), message)
	} else {
		wrapped = apperrors.New(kind.apperrorType(), message)
	}
	return &ModerationError{Kind: kind, Violation: violation, Position: position, cause: wrapped}
}

// NewErrCredential 토큰 발급 실패 에러를 생성합니다.
func NewErrCredential(cause error) *ModerationError {
	return newError(CredentialError, NoViolation, 0, cause, "액세스 토큰 발급에 실패했습니다")
}

// NewErrFetchFailed 이미지 내려받기 실패 에러를 생성합니다.
func NewErrFetchFailed(position int, cause error) *ModerationError {
	return newError(FetchFailed, NoViolation, position, cause, fmt.Sprintf("%d번째 이미지를 내려받지 못했습니다", position))
}

// NewErrTextViolation 텍스트 정책 위반 에러를 생성합니다.
func NewErrTextViolation() *ModerationError {
	return newError(PolicyViolation, TextViolation, 0, nil, "텍스트가 콘텐츠 정책을 위반했습니다")
}

// NewErrImageViolation 이미지 정책 위반 에러를 생성합니다.
func NewErrImageViolation(violation ViolationKind, position int) *ModerationError {
	return newError(PolicyViolation, violation, position, nil, fmt.Sprintf("%d번째 이미지가 검사를 통과하지 못했습니다", position))
}

// NewErrProvider 검수 제공자 통신 실패 에러를 생성합니다.
func NewErrProvider(position int, cause error) *ModerationError {
	return newError(ProviderError, NoViolation, position, cause, "검수 제공자 호출에 실패했습니다")
}

// AsModerationError 에러 체인에서 ModerationError를 찾습니다.
func AsModerationError(err error) (*ModerationError, bool) {
	var modErr *ModerationError
	if errors.As(err, &modErr) {
		return modErr, true
	}
	return nil, false
}

func isKind(err error, kind ErrorKind) bool {
	modErr, ok := AsModerationError(err)
	return ok && modErr.Kind == kind
}

// IsCredentialError 토큰 발급 실패 여부를 확인합니다.
func IsCredentialError(err error) bool { return isKind(err, CredentialError) }

// IsFetchFailed 이미지 내려받기 실패 여부를 확인합니다.
func IsFetchFailed(err error) bool { return isKind(err, FetchFailed) }

// IsPolicyViolation 정책 위반 여부를 확인합니다.
func IsPolicyViolation(err error) bool { return isKind(err, PolicyViolation) }

// IsProviderError 검수 제공자 통신 실패 여부를 확인합니다.
func IsProviderError(err error) bool { return isKind(err, ProviderError) }
