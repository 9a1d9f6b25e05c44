package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// DFWBounds 达拉斯-沃斯堡地区的经纬度范围，用于地理编码结果的合理性检查
var DFWBounds = NewBounds(32.3, -97.9, 33.4, -96.2)

// Bounds 区域矩形范围，内部使用 orb.Bound（X 为经度，Y 为纬度）
type Bounds struct {
	bound orb.Bound
}

// NewBounds 按 (minLat, minLng, maxLat, maxLng) 构造范围
func NewBounds(minLat, minLng, maxLat, maxLng float64) Bounds {
	return Bounds{bound: orb.Bound{
		Min: orb.Point{minLng, minLat},
		Max: orb.Point{maxLng, maxLat},
	}}
}

// ParseBounds 解析 "minLat,minLng,maxLat,maxLng" 格式的文本
func ParseBounds(s string) (Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bounds{}, fmt.Errorf("bounds must have 4 comma separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Bounds{}, fmt.Errorf("invalid bounds value %q: %w", p, err)
		}
		vals[i] = v
	}
	if vals[0] > vals[2] || vals[1] > vals[3] {
		return Bounds{}, fmt.Errorf("bounds min must not exceed max: %s", s)
	}
	return NewBounds(vals[0], vals[1], vals[2], vals[3]), nil
}

// Contains 判断点是否落在范围内（含边界）
func (b Bounds) Contains(p Point) bool {
	return b.bound.Contains(orb.Point{p.Lng, p.Lat})
}

func (b Bounds) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.bound.Min.Y(), b.bound.Min.X(), b.bound.Max.Y(), b.bound.Max.X())
}
