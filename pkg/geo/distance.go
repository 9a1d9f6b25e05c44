package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMiles 地球平均半径（英里），与前端展示保持一致
const EarthRadiusMiles = 3959.0

// Point 表示一个经纬度坐标（十进制度）
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Distance 使用 haversine 公式计算两点间的大圆距离，单位英里。
// 不做范围校验，调用方负责剔除非有限值。
func Distance(originLat, originLng, targetLat, targetLng float64) float64 {
	dLat := toRadians(targetLat - originLat)
	dLng := toRadians(targetLng - originLng)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(originLat))*math.Cos(toRadians(targetLat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMiles * c
}

// DistanceBetween 是 Distance 的 Point 版本
func DistanceBetween(origin, target Point) float64 {
	return Distance(origin.Lat, origin.Lng, target.Lat, target.Lng)
}

// RoundMiles 保留一位小数，过滤与展示都基于该值，保证同一对坐标多次请求结果一致
func RoundMiles(raw float64) float64 {
	return math.Round(raw*10) / 10
}

// Format 将英里数格式化为展示文本，例如 "3.2 mi"；小于 0.1 显示为 "< 0.1 mi"
func Format(miles float64) string {
	if miles < 0.1 {
		return "< 0.1 mi"
	}
	return fmt.Sprintf("%.1f mi", miles)
}

// ParseCoordinate 解析以文本存储的坐标，只接受有限数值
func ParseCoordinate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParsePoint 解析一对文本坐标，任一失败返回 false
func ParsePoint(lat, lng string) (Point, bool) {
	la, ok := ParseCoordinate(lat)
	if !ok {
		return Point{}, false
	}
	ln, ok := ParseCoordinate(lng)
	if !ok {
		return Point{}, false
	}
	return Point{Lat: la, Lng: ln}, true
}

// Valid 判断点是否为有限值
func (p Point) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) && !math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}
