package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/foodmap/internal/repositories"
)

// 定义服务层的错误，处理器据此映射 HTTP 状态码
var (
	ErrResourceNotFound   = errors.New("resource not found")
	ErrStoreNotConfigured = errors.New("resource store is not configured")
	ErrInvalidReportType  = errors.New("reportType must be one of: closed, incorrect_info, other")
	ErrDuplicate          = errors.New("record already exists")
)

// ValidationError 字段级校验失败，Fields 为 字段名 -> 原因
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validationErrors 收集字段错误，没有错误时 err() 返回 nil
type validationErrors map[string]string

func (v validationErrors) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v[field] = "is required"
	}
}

func (v validationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

// translateStoreError 将仓库层错误转换为服务层错误
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return ErrResourceNotFound
	case errors.Is(err, repositories.ErrConflict):
		return ErrDuplicate
	default:
		return err
	}
}
