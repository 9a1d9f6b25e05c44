package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/foodmap/internal/models"
)

// gormResourceStore 是 ResourceStore 的 GORM 实现，SQLite 与 Postgres 共用
type gormResourceStore struct {
	db *gorm.DB
}

// NewGormResourceStore 创建一个新的 gormResourceStore 实例
func NewGormResourceStore(db *gorm.DB) ResourceStore {
	return &gormResourceStore{db: db}
}

func (r *gormResourceStore) ListResources(ctx context.Context) ([]models.FoodResource, error) {
	var resources []models.FoodResource
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&resources).Error; err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *gormResourceStore) GetResource(ctx context.Context, id string) (*models.FoodResource, error) {
	var resource models.FoodResource
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resource).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resource, nil
}

func (r *gormResourceStore) CreateResource(ctx context.Context, resource *models.FoodResource) error {
	if err := r.db.WithContext(ctx).Create(resource).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *gormResourceStore) CountResources(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.FoodResource{}).Count(&n).Error
	return n, err
}

func (r *gormResourceStore) DeleteResource(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.FoodResource{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordReport 累加计数使用单条 UPDATE，避免并发反馈时丢失更新
func (r *gormResourceStore) RecordReport(ctx context.Context, report *models.UserReport) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if report.ReportType == models.ReportTypeClosed {
			res := tx.Model(&models.FoodResource{}).
				Where("id = ?", report.ResourceID).
				Updates(map[string]interface{}{
					"reported_closed":       true,
					"reported_closed_count": gorm.Expr("reported_closed_count + ?", 1),
					"reported_closed_at":    gorm.Expr("COALESCE(reported_closed_at, ?)", report.ReportedAt),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrNotFound
			}
		} else {
			var n int64
			if err := tx.Model(&models.FoodResource{}).Where("id = ?", report.ResourceID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
		}

		if err := tx.Create(report).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
}

func (r *gormResourceStore) VerifyResource(ctx context.Context, id, source string, at time.Time) (*models.FoodResource, error) {
	var updated models.FoodResource
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.FoodResource{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"last_verified_date":    at,
				"verification_source":   source,
				"reported_closed":       false,
				"reported_closed_count": 0,
				"reported_closed_at":    nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("id = ?", id).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *gormResourceStore) ListFlagged(ctx context.Context) ([]models.FoodResource, error) {
	var resources []models.FoodResource
	err := r.db.WithContext(ctx).
		Where("reported_closed = ?", true).
		Order("reported_closed_count DESC, reported_closed_at DESC, id ASC").
		Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *gormResourceStore) ListStaleOrFlagged(ctx context.Context, cutoff time.Time) ([]models.FoodResource, error) {
	var resources []models.FoodResource
	err := r.db.WithContext(ctx).
		Where("last_verified_date < ? OR last_verified_date IS NULL OR reported_closed = ?", cutoff, true).
		Order("created_at ASC, id ASC").
		Find(&resources).Error
	if err != nil {
		return nil, err
	}
	return resources, nil
}

func (r *gormResourceStore) ListReports(ctx context.Context, resourceID string) ([]models.UserReport, error) {
	var reports []models.UserReport
	err := r.db.WithContext(ctx).
		Where("resource_id = ?", resourceID).
		Order("reported_at ASC, id ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *gormResourceStore) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	if err := r.db.WithContext(ctx).Create(submission).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *gormResourceStore) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.db.WithContext(ctx).Order("submitted_at DESC, id DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}
