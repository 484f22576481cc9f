// Package middleware API 서버의 Echo 미들웨어를 제공합니다.
//
// 적용 순서는 api.NewHTTPServer에서 결정하며, 각 미들웨어는 에러를 직접 응답하지 않고
// echo.HTTPError를 반환하여 전역 에러 핸들러가 응답 형식을 통일하도록 합니다.
package middleware
