package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/services"
	"github.com/foodmap/pkg/utils"
)

// AckResponse 审核类操作的确认响应
type AckResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// respondServiceError 将服务层错误映射为 HTTP 响应
func respondServiceError(c *gin.Context, err error, op, id string) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrResourceNotFound):
		utils.RespondNotFoundError(c, "Resource")
	case errors.As(err, &verr):
		utils.RespondValidationError(c, verr.Fields)
	case errors.Is(err, services.ErrInvalidReportType):
		utils.RespondValidationError(c, err.Error())
	case errors.Is(err, services.ErrDuplicate):
		utils.RespondConflictError(c, err.Error())
	case errors.Is(err, services.ErrStoreNotConfigured):
		logger.L().Error("store_not_configured", "op", op, "id", id)
		utils.RespondInternalServerError(c, "Storage is not configured")
	default:
		logger.L().Error("request_failed", "op", op, "id", id, "err", err)
		utils.RespondAPIError(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
