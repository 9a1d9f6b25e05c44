package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应信封 {"status":"success","message":..,"data":..}
type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse 路由级错误（如 404 未匹配路由）
type ErrorResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// APIErrorResponse 业务错误 {"error":..,"details":..}，details 可为字符串或字段映射
type APIErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// RespondSuccess message 与 data 都为空时填充默认消息
func RespondSuccess(c *gin.Context, status int, data interface{}, message string) {
	if message == "" && data == nil {
		message = "Operation successful"
	}
	c.JSON(status, SuccessResponse{Status: "success", Message: message, Data: data})
}

// RespondError 写出 ErrorResponse
func RespondError(c *gin.Context, status int, message string, details ...string) {
	c.JSON(status, ErrorResponse{Status: "error", Message: message, Details: details})
}

// RespondAPIError 写出 APIErrorResponse 并中止后续处理
func RespondAPIError(c *gin.Context, status int, errorMessage string, details interface{}) {
	c.AbortWithStatusJSON(status, APIErrorResponse{Error: errorMessage, Details: details})
}

// firstDetail 可选的单条详情，没有时返回 nil 以省略字段
func firstDetail(details []string) interface{} {
	if len(details) == 0 {
		return nil
	}
	return details[0]
}

func RespondValidationError(c *gin.Context, details interface{}) {
	RespondAPIError(c, http.StatusBadRequest, "Invalid request parameters", details)
}

// RespondUnauthorizedError message 为空时使用默认提示
func RespondUnauthorizedError(c *gin.Context, message ...string) {
	errMsg := "Authentication required or token invalid/expired"
	if len(message) > 0 && message[0] != "" {
		errMsg = message[0]
	}
	RespondAPIError(c, http.StatusUnauthorized, errMsg, nil)
}

// RespondNotFoundError 生成 "<name> not found"
func RespondNotFoundError(c *gin.Context, resourceName string) {
	RespondAPIError(c, http.StatusNotFound, resourceName+" not found", nil)
}

func RespondInternalServerError(c *gin.Context, message string, details ...string) {
	RespondAPIError(c, http.StatusInternalServerError, message, firstDetail(details))
}

func RespondConflictError(c *gin.Context, message string, details ...string) {
	RespondAPIError(c, http.StatusConflict, message, firstDetail(details))
}

// RespondServiceUnavailableError 下游依赖（存储、地理编码）不可用
func RespondServiceUnavailableError(c *gin.Context, message string, details ...string) {
	RespondAPIError(c, http.StatusServiceUnavailable, message, firstDetail(details))
}
