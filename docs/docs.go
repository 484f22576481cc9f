// Package docs Swagger 문서 정의입니다. swag init으로 갱신합니다.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "description": "서버 상태와 가동 시간을 반환합니다. 인증 없이 호출 가능합니다.",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "서버 헬스체크",
                "responses": {
                    "200": {"description": "헬스체크 결과", "schema": {"$ref": "#/definitions/system.HealthResponse"}}
                }
            }
        },
        "/version": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "빌드 버전 정보",
                "responses": {
                    "200": {"description": "버전 정보", "schema": {"$ref": "#/definitions/system.VersionResponse"}}
                }
            }
        },
        "/api/v1/apps": {
            "get": {
                "security": [{"AdminKeyAuth": []}],
                "description": "호출한 관리자에게 연결된 미니앱 목록을 ID 순으로 반환합니다.",
                "produces": ["application/json"],
                "tags": ["Application"],
                "summary": "내 미니앱 목록",
                "responses": {
                    "200": {"description": "미니앱 목록", "schema": {"type": "array", "items": {"$ref": "#/definitions/response.ApplicationResponse"}}},
                    "401": {"description": "인증 실패", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"AdminKeyAuth": []}],
                "description": "미니앱을 online 상태로 등록하고 새 제휴 키를 발급합니다. 호출한 관리자가 자동으로 연결됩니다.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Application"],
                "summary": "미니앱 등록",
                "parameters": [
                    {"description": "미니앱 정보", "name": "app", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.RegisterAppRequest"}}
                ],
                "responses": {
                    "201": {"description": "등록된 미니앱", "schema": {"$ref": "#/definitions/response.ApplicationResponse"}},
                    "400": {"description": "잘못된 요청", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "인증 실패", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "제휴 키 충돌", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/apps/alliance/{key}": {
            "get": {
                "security": [{"AdminKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Application"],
                "summary": "제휴 키로 미니앱 조회",
                "parameters": [{"type": "string", "description": "제휴 키", "name": "key", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "미니앱", "schema": {"$ref": "#/definitions/response.ApplicationResponse"}},
                    "404": {"description": "존재하지 않는 제휴 키", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/apps/{id}": {
            "get": {
                "security": [{"AdminKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Application"],
                "summary": "미니앱 조회",
                "parameters": [{"type": "integer", "description": "미니앱 ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "미니앱", "schema": {"$ref": "#/definitions/response.ApplicationResponse"}},
                    "404": {"description": "존재하지 않는 미니앱", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/apps/{id}/admins": {
            "post": {
                "security": [{"AdminKeyAuth": []}],
                "description": "다른 관리자를 미니앱에 연결합니다.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Application"],
                "summary": "관리자 연결",
                "parameters": [
                    {"type": "integer", "description": "미니앱 ID", "name": "id", "in": "path", "required": true},
                    {"description": "연결할 관리자", "name": "link", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.ConnectAdminRequest"}}
                ],
                "responses": {
                    "201": {"description": "연결 결과", "schema": {"$ref": "#/definitions/response.AdminLinkResponse"}},
                    "404": {"description": "존재하지 않는 미니앱", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "이미 연결된 관리자", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/apps/{id}/status/audit": {
            "post": {
                "security": [{"AdminKeyAuth": []}],
                "description": "미니앱을 WeChat 심사 모드(online)로 전환합니다.",
                "produces": ["application/json"],
                "tags": ["Application"],
                "summary": "심사 모드 전환",
                "parameters": [{"type": "integer", "description": "미니앱 ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "전환된 미니앱", "schema": {"$ref": "#/definitions/response.ApplicationResponse"}},
                    "403": {"description": "전환 불가 상태", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "존재하지 않는 미니앱", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/apps/{id}/status/online": {
            "post": {
                "security": [{"AdminKeyAuth": []}],
                "description": "미니앱을 운영 모드(pending_audit)로 전환합니다.",
                "produces": ["application/json"],
                "tags": ["Application"],
                "summary": "운영 모드 전환",
                "parameters": [{"type": "integer", "description": "미니앱 ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "전환된 미니앱", "schema": {"$ref": "#/definitions/response.ApplicationResponse"}},
                    "403": {"description": "전환 불가 상태", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "존재하지 않는 미니앱", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/apps/{id}/status/close": {
            "post": {
                "security": [{"AdminKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Application"],
                "summary": "미니앱 종료",
                "parameters": [{"type": "integer", "description": "미니앱 ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "종료된 미니앱", "schema": {"$ref": "#/definitions/response.ApplicationResponse"}},
                    "404": {"description": "존재하지 않는 미니앱", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/apps/{id}/moderation/text": {
            "post": {
                "security": [{"AdminKeyAuth": []}],
                "description": "미니앱의 액세스 토큰으로 텍스트를 검사합니다. 위반 시 422를 반환합니다.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Moderation"],
                "summary": "텍스트 콘텐츠 검사",
                "parameters": [
                    {"type": "integer", "description": "미니앱 ID", "name": "id", "in": "path", "required": true},
                    {"description": "검사할 텍스트", "name": "content", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.TextModerationRequest"}}
                ],
                "responses": {
                    "200": {"description": "검사 통과", "schema": {"$ref": "#/definitions/response.SuccessResponse"}},
                    "404": {"description": "존재하지 않는 미니앱", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "정책 위반", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "토큰 발급 또는 검사 제공자 오류", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/api/v1/apps/{id}/moderation/images": {
            "post": {
                "security": [{"AdminKeyAuth": []}],
                "description": "원본 저장소의 이미지를 순서대로 내려받아 검사합니다. 첫 번째 실패에서 중단합니다.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Moderation"],
                "summary": "이미지 콘텐츠 검사",
                "parameters": [
                    {"type": "integer", "description": "미니앱 ID", "name": "id", "in": "path", "required": true},
                    {"description": "검사할 이미지 참조 목록", "name": "images", "in": "body", "required": true, "schema": {"$ref": "#/definitions/request.ImageModerationRequest"}}
                ],
                "responses": {
                    "200": {"description": "검사 통과", "schema": {"$ref": "#/definitions/response.SuccessResponse"}},
                    "400": {"description": "이미지 수 초과", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "존재하지 않는 미니앱", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "정책 위반", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "다운로드, 토큰 발급 또는 검사 제공자 오류", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "request.ConnectAdminRequest": {
            "type": "object",
            "required": ["admin_id"],
            "properties": {"admin_id": {"type": "integer", "example": 2}}
        },
        "request.ImageModerationRequest": {
            "type": "object",
            "properties": {"images": {"type": "array", "items": {"type": "string"}, "example": ["uploads/2024/01/a.png"]}}
        },
        "request.RegisterAppRequest": {
            "type": "object",
            "required": ["app_key", "app_secret", "mobile", "name"],
            "properties": {
                "app_key": {"type": "string", "maxLength": 64, "example": "wx0123456789abcdef"},
                "app_secret": {"type": "string", "maxLength": 128, "example": "0123456789abcdef0123456789abcdef"},
                "college_id": {"type": "integer", "example": 3},
                "domain": {"type": "string", "maxLength": 255, "example": "market.example.com"},
                "mobile": {"type": "string", "maxLength": 20, "example": "010-0000-0000"},
                "name": {"type": "string", "maxLength": 100, "example": "캠퍼스 마켓"}
            }
        },
        "request.TextModerationRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {"content": {"type": "string", "example": "검사할 게시글 본문"}}
        },
        "response.AdminLinkResponse": {
            "type": "object",
            "properties": {
                "admin_id": {"type": "integer", "example": 2},
                "app_id": {"type": "integer", "example": 1},
                "created_at": {"type": "string"}
            }
        },
        "response.ApplicationResponse": {
            "type": "object",
            "properties": {
                "alliance_key": {"type": "string", "example": "7ZuvTqTRvvQmXhBdCfNw6b"},
                "app_key": {"type": "string", "example": "wx0123456789abcdef"},
                "college_id": {"type": "integer", "example": 3},
                "created_at": {"type": "string"},
                "domain": {"type": "string", "example": "market.example.com"},
                "id": {"type": "integer", "example": 1},
                "mobile": {"type": "string", "example": "010-0000-0000"},
                "name": {"type": "string", "example": "캠퍼스 마켓"},
                "status": {"type": "string", "example": "online"},
                "updated_at": {"type": "string"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "잘못된 요청입니다"},
                "result_code": {"type": "integer", "example": 400}
            }
        },
        "response.SuccessResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "ok"},
                "result_code": {"type": "integer", "example": 0}
            }
        },
        "system.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "healthy"},
                "uptime": {"type": "integer", "example": 3600}
            }
        },
        "system.VersionResponse": {
            "type": "object",
            "properties": {
                "build_date": {"type": "string"},
                "build_number": {"type": "string"},
                "commit": {"type": "string"},
                "go_version": {"type": "string"},
                "version": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "AdminKeyAuth": {"type": "apiKey", "name": "X-Admin-Key", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "MiniApp Server API",
	Description:      "WeChat 미니앱 등록, 상태 관리, 콘텐츠 검사 API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
