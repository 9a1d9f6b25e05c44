package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodmap/internal/models"
	"github.com/foodmap/internal/services"
	"github.com/foodmap/pkg/utils"
)

// VerificationHandler handles user reports and the moderation endpoints.
type VerificationHandler struct {
	service   services.VerificationService
	staleDays int
}

// NewVerificationHandler staleDays is the default threshold for needs-verification.
func NewVerificationHandler(service services.VerificationService, staleDays int) *VerificationHandler {
	if staleDays <= 0 {
		staleDays = services.DefaultStaleDays
	}
	return &VerificationHandler{service: service, staleDays: staleDays}
}

// ReportPayload is the body of POST /resources/{id}/report.
// reportDetails is accepted as an alias of details.
type ReportPayload struct {
	ReportType    string  `json:"reportType" binding:"required"`
	Details       *string `json:"details,omitempty"`
	ReportDetails *string `json:"reportDetails,omitempty"`
	SourceIP      string  `json:"sourceIp,omitempty"`
}

// VerifyPayload is the optional body of POST /resources/{id}/verify.
type VerifyPayload struct {
	Source string `json:"source,omitempty" binding:"omitempty,max=50"`
}

// ReportResource godoc
// @Summary Report a problem with a resource
// @Description reportType is one of closed, incorrect_info, other. A closed report flags the resource
// @Description and increments reportedClosedCount. sourceIp defaults to the caller's address.
// @Tags Verification
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param report body ReportPayload true "Report"
// @Success 201 {object} utils.SuccessResponse{data=models.UserReport} "Stored report"
// @Failure 400 {object} utils.APIErrorResponse "Invalid report type or payload"
// @Failure 404 {object} utils.APIErrorResponse "Resource not found"
// @Failure 500 {object} utils.APIErrorResponse "Internal server error"
// @Router /resources/{id}/report [post]
func (h *VerificationHandler) ReportResource(c *gin.Context) {
	id := c.Param("id")
	var payload ReportPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}
	details := payload.Details
	if details == nil {
		details = payload.ReportDetails
	}
	sourceIP := strings.TrimSpace(payload.SourceIP)
	if sourceIP == "" {
		sourceIP = c.ClientIP()
	}

	report, err := h.service.Report(c.Request.Context(), services.ReportInput{
		ResourceID: id,
		ReportType: payload.ReportType,
		Details:    details,
		SourceIP:   sourceIP,
	})
	if err != nil {
		respondServiceError(c, err, "report_resource", id)
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, report, "Report received")
}

// VerifyResource godoc
// @Summary Mark a resource as verified
// @Description Sets lastVerifiedDate to now and clears the closed flag, count and timestamp.
// @Tags Verification
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param body body VerifyPayload false "Verification source (default manual_review)"
// @Success 200 {object} utils.SuccessResponse{data=AckResponse} "Verified"
// @Failure 401 {object} utils.APIErrorResponse "Unauthorized"
// @Failure 404 {object} utils.APIErrorResponse "Resource not found"
// @Router /resources/{id}/verify [post]
// @Security BearerAuth
func (h *VerificationHandler) VerifyResource(c *gin.Context) {
	id := c.Param("id")
	var payload VerifyPayload
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			utils.RespondValidationError(c, err.Error())
			return
		}
	}
	r, err := h.service.Verify(c.Request.Context(), id, payload.Source)
	if err != nil {
		respondServiceError(c, err, "verify_resource", id)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, AckResponse{ID: r.ID, Success: true}, "Resource verified")
}

// DeleteResource godoc
// @Summary Remove a resource
// @Description Hard delete. Reports that reference the resource are kept.
// @Tags Verification
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} utils.SuccessResponse{data=AckResponse} "Removed"
// @Failure 401 {object} utils.APIErrorResponse "Unauthorized"
// @Failure 404 {object} utils.APIErrorResponse "Resource not found"
// @Router /resources/{id} [delete]
// @Security BearerAuth
func (h *VerificationHandler) DeleteResource(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Remove(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete_resource", id)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, AckResponse{ID: id, Success: true}, "Resource removed")
}

// ListFlagged godoc
// @Summary List resources reported closed
// @Tags Verification
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]models.FoodResource} "Flagged resources, most reported first"
// @Failure 401 {object} utils.APIErrorResponse "Unauthorized"
// @Router /resources/flagged [get]
// @Security BearerAuth
func (h *VerificationHandler) ListFlagged(c *gin.Context) {
	resources, err := h.service.ListFlagged(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list_flagged", "")
		return
	}
	if resources == nil {
		resources = []models.FoodResource{}
	}
	utils.RespondSuccess(c, http.StatusOK, resources, "")
}

// NeedsVerification godoc
// @Summary Resources that need verification
// @Description Resources not verified within the threshold, or reported closed. Flagged first, then most overdue.
// @Tags Verification
// @Produce json
// @Param days query int false "Threshold in days" default(60)
// @Success 200 {object} utils.SuccessResponse{data=models.VerificationReport} "Report"
// @Failure 400 {object} utils.APIErrorResponse "Invalid days"
// @Failure 401 {object} utils.APIErrorResponse "Unauthorized"
// @Router /resources/needs-verification [get]
// @Security BearerAuth
func (h *VerificationHandler) NeedsVerification(c *gin.Context) {
	days := h.staleDays
	if s := strings.TrimSpace(c.Query("days")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			utils.RespondValidationError(c, map[string]string{"days": "must be a positive integer"})
			return
		}
		days = n
	}
	report, err := h.service.ListNeedingVerification(c.Request.Context(), days)
	if err != nil {
		respondServiceError(c, err, "needs_verification", "")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, report, "")
}

// ListReports godoc
// @Summary Reports filed against a resource
// @Tags Verification
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} utils.SuccessResponse{data=[]models.UserReport} "Reports, oldest first"
// @Failure 401 {object} utils.APIErrorResponse "Unauthorized"
// @Router /resources/{id}/reports [get]
// @Security BearerAuth
func (h *VerificationHandler) ListReports(c *gin.Context) {
	id := c.Param("id")
	reports, err := h.service.ListReports(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "list_reports", id)
		return
	}
	if reports == nil {
		reports = []models.UserReport{}
	}
	utils.RespondSuccess(c, http.StatusOK, reports, "")
}
