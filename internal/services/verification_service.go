package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/metrics"
	"github.com/foodmap/internal/models"
	"github.com/foodmap/internal/repositories"
	"github.com/foodmap/pkg/utils"
)

const (
	// DefaultStaleDays 超过该天数未核实的资源进入待核实列表
	DefaultStaleDays = 60
	// NeverVerifiedDays 从未核实过的资源使用的天数
	NeverVerifiedDays = 999
)

// ReportInput 用户反馈请求
type ReportInput struct {
	ResourceID string
	ReportType string
	Details    *string
	SourceIP   string
}

// VerificationService 管理资源的反馈与核实生命周期
type VerificationService interface {
	// Report 记录一条用户反馈，closed 类型会累加资源的关闭计数
	Report(ctx context.Context, in ReportInput) (*models.UserReport, error)
	// Verify 人工确认资源仍在运营：刷新核实时间并清除关闭标记
	Verify(ctx context.Context, id, source string) (*models.FoodResource, error)
	// Remove 删除资源，其反馈记录保留
	Remove(ctx context.Context, id string) error
	ListFlagged(ctx context.Context) ([]models.FoodResource, error)
	// ListNeedingVerification 生成待核实报告，days <= 0 时使用 DefaultStaleDays
	ListNeedingVerification(ctx context.Context, days int) (*models.VerificationReport, error)
	ListReports(ctx context.Context, resourceID string) ([]models.UserReport, error)
}

type verificationService struct {
	store repositories.ResourceStore
	now   func() time.Time
}

// NewVerificationService 创建 VerificationService
func NewVerificationService(store repositories.ResourceStore) VerificationService {
	return &verificationService{store: store, now: time.Now}
}

func (s *verificationService) Report(ctx context.Context, in ReportInput) (*models.UserReport, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	reportType := models.ReportType(strings.TrimSpace(in.ReportType))
	if !reportType.Valid() {
		return nil, ErrInvalidReportType
	}
	id := strings.TrimSpace(in.ResourceID)
	if id == "" {
		return nil, &ValidationError{Fields: map[string]string{"resourceId": "is required"}}
	}

	report := &models.UserReport{
		ID:            uuid.NewString(),
		ResourceID:    id,
		ReportType:    reportType,
		ReportDetails: utils.OptionalString(in.Details),
		ReportedAt:    s.now(),
	}
	if ip := strings.TrimSpace(in.SourceIP); ip != "" {
		report.UserIP = &ip
	}
	if err := s.store.RecordReport(ctx, report); err != nil {
		return nil, translateStoreError(err)
	}
	metrics.ReportsTotal.WithLabelValues(string(reportType)).Inc()
	logger.L().Info("report_recorded", "resource_id", id, "type", string(reportType))
	return report, nil
}

func (s *verificationService) Verify(ctx context.Context, id, source string) (*models.FoodResource, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = models.VerificationSourceManualReview
	}
	r, err := s.store.VerifyResource(ctx, strings.TrimSpace(id), source, s.now())
	if err != nil {
		return nil, translateStoreError(err)
	}
	metrics.VerificationsTotal.Inc()
	logger.L().Info("resource_verified", "resource_id", r.ID, "source", source)
	return r, nil
}

func (s *verificationService) Remove(ctx context.Context, id string) error {
	if s.store == nil {
		return ErrStoreNotConfigured
	}
	if err := s.store.DeleteResource(ctx, strings.TrimSpace(id)); err != nil {
		return translateStoreError(err)
	}
	logger.L().Info("resource_removed", "resource_id", id)
	return nil
}

func (s *verificationService) ListFlagged(ctx context.Context) ([]models.FoodResource, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.store.ListFlagged(ctx)
}

func (s *verificationService) ListReports(ctx context.Context, resourceID string) ([]models.UserReport, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.store.ListReports(ctx, strings.TrimSpace(resourceID))
}

func (s *verificationService) ListNeedingVerification(ctx context.Context, days int) (*models.VerificationReport, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if days <= 0 {
		days = DefaultStaleDays
	}
	now := s.now()
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	candidates, err := s.store.ListStaleOrFlagged(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stale resources: %w", err)
	}
	total, err := s.store.CountResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("count resources: %w", err)
	}

	items := make([]models.ResourceNeedingVerification, 0, len(candidates))
	flagged := 0
	for _, r := range candidates {
		if r.ReportedClosed {
			flagged++
		}
		items = append(items, models.ResourceNeedingVerification{
			FoodResource:          r,
			DaysSinceVerification: DaysSince(r.LastVerifiedDate, now),
		})
	}
	SortForVerification(items)

	return &models.VerificationReport{
		GeneratedAt:       now,
		DaysThreshold:     days,
		TotalResources:    int(total),
		NeedsVerification: len(items),
		ReportedClosed:    flagged,
		UpToDate:          int(total) - len(items),
		LocationsToVerify: items,
	}, nil
}

// DaysSince 返回整天数（向下取整），从未核实返回 NeverVerifiedDays
func DaysSince(t *time.Time, now time.Time) int {
	if t == nil {
		return NeverVerifiedDays
	}
	return int(math.Floor(now.Sub(*t).Hours() / 24))
}

// SortForVerification 被标记关闭的排在前面，其后按未核实天数降序
func SortForVerification(items []models.ResourceNeedingVerification) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.ReportedClosed != b.ReportedClosed {
			return a.ReportedClosed
		}
		return a.DaysSinceVerification > b.DaysSinceVerification
	})
}
