// Package errors 서비스 전역에서 사용하는 타입 기반 에러를 제공합니다.
//
// 모든 에러는 ErrorType으로 분류되며 Wrap 계열 함수로 원인 에러를 보존한 채
// 문맥을 덧붙일 수 있습니다. HTTP 계층은 UnderlyingType으로 가장 안쪽 타입을 꺼내
// 응답 코드를 결정합니다.
//
//	err := errors.New(errors.NotFound, "애플리케이션을 찾을 수 없습니다")
//	err = errors.Wrap(err, errors.Internal, "상태 변경 실패")
//	errors.Is(err, errors.NotFound)      // true
//	errors.UnderlyingType(err)           // NotFound
//
// 외부 라이브러리 에러를 감쌀 때는 발생 계층에 맞는 타입을 고릅니다.
// (예: gorm.ErrRecordNotFound → NotFound, context.DeadlineExceeded → Timeout)
package errors

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// AppError 타입, 메시지, 원인, 발생 위치를 함께 보관하는 에러입니다.
type AppError struct {
	errType ErrorType
	message string
	cause   error
	stack   []StackFrame
}

// Type 에러의 타입을 반환합니다.
func (e *AppError) Type() ErrorType {
	return e.errType
}

// Message 원인 에러를 제외한 메시지만 반환합니다.
func (e *AppError) Message() string {
	return e.message
}

// Stack 에러 생성 시점에 수집한 호출 스택을 반환합니다.
func (e *AppError) Stack() []StackFrame {
	return e.stack
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.errType, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.errType, e.message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Format %+v 지정 시 스택과 원인 체인을 함께 출력합니다.
//
// 스택은 체인의 경계(원인이 없거나 원인이 AppError가 아닌 경우)에서만 출력하여
// 같은 위치가 반복해서 찍히지 않도록 합니다.
func (e *AppError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "[%s] %s", e.errType, e.message)

			var inner *AppError
			if (e.cause == nil || !errors.As(e.cause, &inner)) && len(e.stack) > 0 {
				fmt.Fprint(s, "\nStack trace:")
				for _, frame := range e.stack {
					fn := frame.Function
					if idx := strings.LastIndex(fn, "/"); idx != -1 {
						fn = fn[idx+1:]
					}
					fmt.Fprintf(s, "\n\t%s:%d %s", frame.File, frame.Line, fn)
				}
			}

			if e.cause != nil {
				fmt.Fprint(s, "\nCaused by:\n")
				if f, ok := e.cause.(fmt.Formatter); ok {
					f.Format(s, verb)
				} else {
					fmt.Fprintf(s, "\t%v", e.cause)
				}
			}
			return
		}
		fallthrough
	case 's':
		_, _ = io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// New 새로운 에러를 생성합니다.
func New(errType ErrorType, message string) error {
	return &AppError{errType: errType, message: message, stack: captureStack(defaultCallerSkip)}
}

// Newf 포맷 문자열로 새로운 에러를 생성합니다.
func Newf(errType ErrorType, format string, args ...any) error {
	return &AppError{errType: errType, message: fmt.Sprintf(format, args...), stack: captureStack(defaultCallerSkip)}
}

// Wrap 원인 에러를 감싸 새로운 에러를 생성합니다. err이 nil이면 nil을 반환합니다.
func Wrap(err error, errType ErrorType, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{errType: errType, message: message, cause: err, stack: captureStack(defaultCallerSkip)}
}

// Wrapf 포맷 문자열로 원인 에러를 감쌉니다. err이 nil이면 nil을 반환합니다.
func Wrapf(err error, errType ErrorType, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &AppError{errType: errType, message: fmt.Sprintf(format, args...), cause: err, stack: captureStack(defaultCallerSkip)}
}

// Is 에러 체인에 지정한 타입의 AppError가 있는지 확인합니다.
func Is(err error, errType ErrorType) bool {
	for err != nil {
		if appErr, ok := err.(*AppError); ok && appErr.errType == errType {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// As 표준 errors.As의 별칭입니다.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// RootCause 체인의 가장 안쪽 에러를 반환합니다.
func RootCause(err error) error {
	if err == nil {
		return nil
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// UnderlyingType 체인에서 가장 안쪽에 있는 AppError의 타입을 반환합니다.
// AppError가 없으면 Unknown을 반환합니다.
func UnderlyingType(err error) ErrorType {
	t := Unknown
	for err != nil {
		if appErr, ok := err.(*AppError); ok {
			t = appErr.errType
		}
		err = errors.Unwrap(err)
	}
	return t
}
