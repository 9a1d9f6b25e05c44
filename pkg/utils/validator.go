package utils

import (
	"errors"
	"strings"
	"unicode"

	"github.com/foodmap/pkg/geo"
)

var (
	ErrInvalidZipCode   = errors.New("please enter a valid 5-digit zip code")
	ErrInvalidLatitude  = errors.New("latitude must be a decimal number between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be a decimal number between -180 and 180")
)

// IsNumeric 检查字符串是否只包含数字
func IsNumeric(s string) bool {
	if s == "" {
		return false // 空字符串不视为数字
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidateZipCode 校验美国 5 位邮编。
// 如果有效，返回 nil；否则返回 ErrInvalidZipCode。
func ValidateZipCode(zip string) error {
	trimmed := strings.TrimSpace(zip)
	if len(trimmed) != 5 || !IsNumeric(trimmed) {
		return ErrInvalidZipCode
	}
	return nil
}

// ValidateCoordinates 校验以文本提交的经纬度
func ValidateCoordinates(lat, lng string) error {
	la, ok := geo.ParseCoordinate(lat)
	if !ok || la < -90 || la > 90 {
		return ErrInvalidLatitude
	}
	ln, ok := geo.ParseCoordinate(lng)
	if !ok || ln < -180 || ln > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

// OptionalString 去除首尾空白，空串返回 nil
func OptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
