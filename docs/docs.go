// Package docs registers the OpenAPI document served at /swagger.
// Regenerate with `swag init -g cmd/server/main.go` after changing handler annotations.
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
        "/resources": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "获取食物资源列表",
                "parameters": [
                    {"type": "number", "description": "纬度", "name": "lat", "in": "query"},
                    {"type": "number", "description": "经度", "name": "lng", "in": "query"},
                    {"type": "string", "description": "5 位邮编", "name": "zip", "in": "query"},
                    {"type": "string", "description": "资源类别", "name": "type", "in": "query"},
                    {"type": "number", "description": "最大距离（英里）", "name": "maxDistance", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "资源列表", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "参数错误", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}},
                    "404": {"description": "邮编无法定位", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}},
                    "503": {"description": "地理编码服务不可用", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "新增一个食物资源",
                "parameters": [
                    {"description": "资源信息", "name": "resource", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateResourcePayload"}}
                ],
                "responses": {
                    "201": {"description": "创建成功的资源", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "请求参数错误", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}}
                }
            }
        },
        "/resources/flagged": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Verification"],
                "summary": "List resources reported closed",
                "responses": {
                    "200": {"description": "Flagged resources", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}}
                }
            }
        },
        "/resources/needs-verification": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Verification"],
                "summary": "Resources that need verification",
                "parameters": [
                    {"type": "integer", "default": 60, "description": "Threshold in days", "name": "days", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Report", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Invalid days", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}}
                }
            }
        },
        "/resources/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Resources"],
                "summary": "获取单个食物资源",
                "parameters": [{"type": "string", "description": "资源 ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "资源详情", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "404": {"description": "资源不存在", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Verification"],
                "summary": "Remove a resource",
                "parameters": [{"type": "string", "description": "Resource ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Removed", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "404": {"description": "Resource not found", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}}
                }
            }
        },
        "/resources/{id}/report": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Verification"],
                "summary": "Report a problem with a resource",
                "parameters": [
                    {"type": "string", "description": "Resource ID", "name": "id", "in": "path", "required": true},
                    {"description": "Report", "name": "report", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ReportPayload"}}
                ],
                "responses": {
                    "201": {"description": "Stored report", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "Invalid report type", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}},
                    "404": {"description": "Resource not found", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}}
                }
            }
        },
        "/resources/{id}/verify": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Verification"],
                "summary": "Mark a resource as verified",
                "parameters": [{"type": "string", "description": "Resource ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Verified", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "404": {"description": "Resource not found", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}}
                }
            }
        },
        "/submissions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Submissions"],
                "summary": "获取用户提交列表",
                "responses": {
                    "200": {"description": "按提交时间倒序", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Submissions"],
                "summary": "提交一个新的食物资源",
                "responses": {
                    "201": {"description": "已保存的提交", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "400": {"description": "请求参数错误", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}}
                }
            }
        },
        "/geocode/zip/{zip}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Geocode"],
                "summary": "邮编转坐标",
                "parameters": [{"type": "string", "description": "5 位邮编", "name": "zip", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "定位结果", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "404": {"description": "无法定位该邮编", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}},
                    "503": {"description": "地理编码服务不可用", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}}
                }
            }
        },
        "/admin/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "管理员登录",
                "parameters": [
                    {"description": "登录凭证", "name": "credentials", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "登录成功", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}},
                    "401": {"description": "无效的用户名或密码", "schema": {"$ref": "#/definitions/utils.APIErrorResponse"}}
                }
            }
        },
        "/admin/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "管理员登出",
                "responses": {
                    "200": {"description": "成功登出", "schema": {"$ref": "#/definitions/utils.SuccessResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.CreateResourcePayload": {
            "type": "object",
            "required": ["address", "latitude", "longitude", "name", "type"],
            "properties": {
                "name": {"type": "string"},
                "type": {"type": "string"},
                "address": {"type": "string"},
                "latitude": {"type": "string"},
                "longitude": {"type": "string"},
                "hours": {"type": "string"},
                "phone": {"type": "string"},
                "appointmentRequired": {"type": "boolean"},
                "verificationSource": {"type": "string"}
            }
        },
        "handlers.ReportPayload": {
            "type": "object",
            "required": ["reportType"],
            "properties": {
                "reportType": {"type": "string", "enum": ["closed", "incorrect_info", "other"]},
                "details": {"type": "string"},
                "sourceIp": {"type": "string"}
            }
        },
        "handlers.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "utils.SuccessResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "data": {}
            }
        },
        "utils.APIErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "details": {}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "DFW Food Map API",
	Description:      "Community food-resource locator: resources, reports, verification and submissions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
