package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foodmap/internal/models"
	"github.com/foodmap/internal/services"
	"github.com/foodmap/pkg/utils"
)

// SubmissionHandler 用户提交新资源
type SubmissionHandler struct {
	service services.SubmissionService
}

// NewSubmissionHandler 创建一个新的 SubmissionHandler 实例
func NewSubmissionHandler(service services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// CreateSubmissionPayload 定义了提交请求的 JSON 结构体
type CreateSubmissionPayload struct {
	Name                string  `json:"name" binding:"required,max=255"`
	Type                string  `json:"type" binding:"required,max=50"`
	Address             string  `json:"address" binding:"required"`
	Latitude            string  `json:"latitude" binding:"required"`
	Longitude           string  `json:"longitude" binding:"required"`
	Hours               *string `json:"hours,omitempty"`
	PhotoURL            *string `json:"photoUrl,omitempty" binding:"omitempty,url"`
	Phone               *string `json:"phone,omitempty"`
	AppointmentRequired bool    `json:"appointmentRequired"`
}

// CreateSubmission godoc
// @Summary 提交一个新的食物资源
// @Description 提交保存后立即返回 201，管理员邮件通知在后台发送，发送失败不影响本次请求。
// @Tags Submissions
// @Accept json
// @Produce json
// @Param submission body CreateSubmissionPayload true "提交内容"
// @Success 201 {object} utils.SuccessResponse{data=models.Submission} "已保存的提交"
// @Failure 400 {object} utils.APIErrorResponse "请求参数错误"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /submissions [post]
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var payload CreateSubmissionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	sub, err := h.service.Submit(c.Request.Context(), services.SubmissionInput{
		Name:                payload.Name,
		Type:                payload.Type,
		Address:             payload.Address,
		Latitude:            payload.Latitude,
		Longitude:           payload.Longitude,
		Hours:               payload.Hours,
		PhotoURL:            payload.PhotoURL,
		Phone:               payload.Phone,
		AppointmentRequired: payload.AppointmentRequired,
	})
	if err != nil {
		respondServiceError(c, err, "create_submission", "")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, sub, "Submission received")
}

// ListSubmissions godoc
// @Summary 获取用户提交列表
// @Tags Submissions
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]models.Submission} "按提交时间倒序"
// @Failure 401 {object} utils.APIErrorResponse "未认证或 Token 无效/过期"
// @Router /submissions [get]
// @Security BearerAuth
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	subs, err := h.service.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list_submissions", "")
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}
	utils.RespondSuccess(c, http.StatusOK, subs, "")
}
