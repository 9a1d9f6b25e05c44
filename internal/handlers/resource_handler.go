package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/services"
	"github.com/foodmap/pkg/geo"
	"github.com/foodmap/pkg/geocode"
	"github.com/foodmap/pkg/utils"
)

// ZipGeocoder 邮编转坐标，由 *geocode.Client 实现
type ZipGeocoder interface {
	Configured() bool
	Postcode(ctx context.Context, zip string) (*geocode.Candidate, error)
}

// ResourceHandler 封装了食物资源查询与创建的 HTTP 处理逻辑
type ResourceHandler struct {
	service  services.ResourceService
	geocoder ZipGeocoder
}

// NewResourceHandler geocoder 可为 nil，此时 zip 查询返回 503
func NewResourceHandler(service services.ResourceService, geocoder ZipGeocoder) *ResourceHandler {
	return &ResourceHandler{service: service, geocoder: geocoder}
}

// CreateResourcePayload 定义了创建资源请求的 JSON 结构体
type CreateResourcePayload struct {
	Name                string  `json:"name" binding:"required,max=255"`
	Type                string  `json:"type" binding:"required,max=50"`
	Address             string  `json:"address" binding:"required"`
	Latitude            string  `json:"latitude" binding:"required"`
	Longitude           string  `json:"longitude" binding:"required"`
	Hours               *string `json:"hours,omitempty"`
	Phone               *string `json:"phone,omitempty"`
	AppointmentRequired bool    `json:"appointmentRequired"`
	VerificationSource  string  `json:"verificationSource,omitempty" binding:"omitempty,max=50"`
}

// ListResourcesQuery 列表查询参数
type ListResourcesQuery struct {
	Lat         string `form:"lat"`
	Lng         string `form:"lng"`
	Zip         string `form:"zip"`
	Type        string `form:"type"`
	MaxDistance string `form:"maxDistance"`
}

// ListResources godoc
// @Summary 获取食物资源列表
// @Description 提供 lat/lng 或 zip 时附带距离（英里，保留一位小数）并按距离升序，坐标无法解析的资源排在最后。
// @Description type 按类别筛选（all 表示不过滤），maxDistance 按半径筛选（含 10% 容差），仅在提供位置时生效。
// @Tags Resources
// @Produce json
// @Param lat query number false "纬度"
// @Param lng query number false "经度"
// @Param zip query string false "5 位邮编，未提供 lat/lng 时使用"
// @Param type query string false "资源类别"
// @Param maxDistance query number false "最大距离（英里）"
// @Success 200 {object} utils.SuccessResponse{data=[]models.FoodResource} "资源列表"
// @Failure 400 {object} utils.APIErrorResponse "参数错误"
// @Failure 404 {object} utils.APIErrorResponse "邮编无法定位"
// @Failure 503 {object} utils.APIErrorResponse "地理编码服务不可用"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /resources [get]
func (h *ResourceHandler) ListResources(c *gin.Context) {
	var q ListResourcesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	var filter services.ResourceFilter
	filter.Category = q.Type
	if s := strings.TrimSpace(q.MaxDistance); s != "" {
		d, err := strconv.ParseFloat(s, 64)
		if err != nil || d < 0 {
			utils.RespondValidationError(c, map[string]string{"maxDistance": "must be a non-negative number"})
			return
		}
		filter.MaxDistance = d
	}

	origin, ok := h.resolveOrigin(c, q)
	if !ok {
		return
	}
	if origin == nil {
		// 没有位置时半径筛选无意义
		filter.MaxDistance = 0
	}

	resources, err := h.service.List(c.Request.Context(), origin)
	if err != nil {
		respondServiceError(c, err, "list_resources", "")
		return
	}
	utils.RespondSuccess(c, http.StatusOK, services.FilterResources(resources, filter), "")
}

// resolveOrigin 优先使用 lat/lng，其次 zip；都未提供时返回 nil。
// 返回 false 表示已写入错误响应。
func (h *ResourceHandler) resolveOrigin(c *gin.Context, q ListResourcesQuery) (*geo.Point, bool) {
	lat, lng := strings.TrimSpace(q.Lat), strings.TrimSpace(q.Lng)
	if lat != "" || lng != "" {
		if err := utils.ValidateCoordinates(lat, lng); err != nil {
			utils.RespondValidationError(c, err.Error())
			return nil, false
		}
		p, _ := geo.ParsePoint(lat, lng)
		return &p, true
	}
	zip := strings.TrimSpace(q.Zip)
	if zip == "" {
		return nil, true
	}
	cand, ok := lookupZip(c, h.geocoder, zip)
	if !ok {
		return nil, false
	}
	p := cand.Point()
	return &p, true
}

const zipNotFoundMessage = "Could not find location for this zip code"

// lookupZip 共享的邮编查询与错误映射
func lookupZip(c *gin.Context, geocoder ZipGeocoder, zip string) (*geocode.Candidate, bool) {
	if err := utils.ValidateZipCode(zip); err != nil {
		utils.RespondValidationError(c, err.Error())
		return nil, false
	}
	if geocoder == nil || !geocoder.Configured() {
		utils.RespondServiceUnavailableError(c, "Geocoding is not configured")
		return nil, false
	}
	cand, err := geocoder.Postcode(c.Request.Context(), zip)
	if err != nil {
		if errors.Is(err, geocode.ErrNoResults) {
			utils.RespondAPIError(c, http.StatusNotFound, zipNotFoundMessage, nil)
			return nil, false
		}
		logger.L().Warn("zip_lookup_failed", "zip", zip, "err", err)
		utils.RespondServiceUnavailableError(c, zipNotFoundMessage)
		return nil, false
	}
	return cand, true
}

// GetResource godoc
// @Summary 获取单个食物资源
// @Tags Resources
// @Produce json
// @Param id path string true "资源 ID"
// @Success 200 {object} utils.SuccessResponse{data=models.FoodResource} "资源详情"
// @Failure 404 {object} utils.APIErrorResponse "资源不存在"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /resources/{id} [get]
func (h *ResourceHandler) GetResource(c *gin.Context) {
	id := c.Param("id")
	resource, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "get_resource", id)
		return
	}
	utils.RespondSuccess(c, http.StatusOK, resource, "")
}

// CreateResource godoc
// @Summary 新增一个食物资源
// @Description 新资源的 lastVerifiedDate 为当前时间，verificationSource 默认为 initial。
// @Tags Resources
// @Accept json
// @Produce json
// @Param resource body CreateResourcePayload true "资源信息"
// @Success 201 {object} utils.SuccessResponse{data=models.FoodResource} "创建成功的资源"
// @Failure 400 {object} utils.APIErrorResponse "请求参数错误或数据校验失败"
// @Failure 500 {object} utils.APIErrorResponse "服务器内部错误"
// @Router /resources [post]
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	var payload CreateResourcePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.RespondValidationError(c, err.Error())
		return
	}

	created, err := h.service.Create(c.Request.Context(), services.CreateResourceInput{
		Name:                payload.Name,
		Type:                payload.Type,
		Address:             payload.Address,
		Latitude:            payload.Latitude,
		Longitude:           payload.Longitude,
		Hours:               payload.Hours,
		Phone:               payload.Phone,
		AppointmentRequired: payload.AppointmentRequired,
		VerificationSource:  payload.VerificationSource,
	})
	if err != nil {
		respondServiceError(c, err, "create_resource", "")
		return
	}
	utils.RespondSuccess(c, http.StatusCreated, created, "Resource created")
}
