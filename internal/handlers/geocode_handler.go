package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foodmap/pkg/utils"
)

// ZipLocation 邮编定位结果
type ZipLocation struct {
	Zip       string  `json:"zip"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Formatted string  `json:"formatted,omitempty"`
}

// GeocodeHandler 邮编查询
type GeocodeHandler struct {
	geocoder ZipGeocoder
}

func NewGeocodeHandler(geocoder ZipGeocoder) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder}
}

// LookupZip godoc
// @Summary 邮编转坐标
// @Description 使用 Geoapify 将美国 5 位邮编解析为坐标，取第一个结果。
// @Tags Geocode
// @Produce json
// @Param zip path string true "5 位邮编"
// @Success 200 {object} utils.SuccessResponse{data=ZipLocation} "定位结果"
// @Failure 400 {object} utils.APIErrorResponse "邮编格式错误"
// @Failure 404 {object} utils.APIErrorResponse "无法定位该邮编"
// @Failure 503 {object} utils.APIErrorResponse "地理编码服务不可用"
// @Router /geocode/zip/{zip} [get]
func (h *GeocodeHandler) LookupZip(c *gin.Context) {
	zip := strings.TrimSpace(c.Param("zip"))
	cand, ok := lookupZip(c, h.geocoder, zip)
	if !ok {
		return
	}
	utils.RespondSuccess(c, http.StatusOK, ZipLocation{
		Zip:       zip,
		Latitude:  cand.Lat,
		Longitude: cand.Lon,
		Formatted: cand.Formatted,
	}, "")
}
