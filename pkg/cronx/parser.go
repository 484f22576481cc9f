// Package cronx 서비스 전역에서 공통으로 사용하는 Cron 표현식 파서를 제공합니다.
package cronx

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// StandardParser 초 단위를 포함하는 6필드 형식의 파서를 반환합니다.
//
//	필드 순서: [초] [분] [시] [일] [월] [요일]
//	예: "0 */10 * * * *" (10분마다), "@hourly", "@every 30m"
func StandardParser() cron.Parser {
	return cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// Validate 표현식이 StandardParser로 해석 가능한지 검사합니다.
func Validate(spec string) error {
	if _, err := StandardParser().Parse(spec); err != nil {
		return fmt.Errorf("잘못된 Cron 표현식(%q): %w", spec, err)
	}
	return nil
}
