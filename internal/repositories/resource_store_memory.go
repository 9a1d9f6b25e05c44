package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/foodmap/internal/models"
)

// memoryResourceStore 在进程内保存数据，未配置 DATABASE_URL 时使用。
// 所有读写都在同一把锁下完成，返回值均为副本。
type memoryResourceStore struct {
	mu          sync.RWMutex
	resources   []models.FoodResource
	index       map[string]int
	reports     []models.UserReport
	submissions []models.Submission
}

// NewMemoryResourceStore 创建一个空的内存存储
func NewMemoryResourceStore() ResourceStore {
	return &memoryResourceStore{index: make(map[string]int)}
}

func (m *memoryResourceStore) ListResources(ctx context.Context) ([]models.FoodResource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.FoodResource, 0, len(m.resources))
	for _, r := range m.resources {
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *memoryResourceStore) GetResource(ctx context.Context, id string) (*models.FoodResource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	r := m.resources[i].Clone()
	return &r, nil
}

func (m *memoryResourceStore) CreateResource(ctx context.Context, resource *models.FoodResource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.index[resource.ID]; exists {
		return ErrConflict
	}
	if resource.CreatedAt.IsZero() {
		resource.CreatedAt = time.Now()
	}
	m.resources = append(m.resources, resource.Clone())
	m.index[resource.ID] = len(m.resources) - 1
	return nil
}

func (m *memoryResourceStore) CountResources(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.resources)), nil
}

func (m *memoryResourceStore) DeleteResource(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[id]
	if !ok {
		return ErrNotFound
	}
	m.resources = append(m.resources[:i], m.resources[i+1:]...)
	delete(m.index, id)
	for j := i; j < len(m.resources); j++ {
		m.index[m.resources[j].ID] = j
	}
	return nil
}

func (m *memoryResourceStore) RecordReport(ctx context.Context, report *models.UserReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[report.ResourceID]
	if !ok {
		return ErrNotFound
	}
	if report.ReportType == models.ReportTypeClosed {
		r := &m.resources[i]
		r.ReportedClosed = true
		r.ReportedClosedCount++
		if r.ReportedClosedAt == nil {
			at := report.ReportedAt
			r.ReportedClosedAt = &at
		}
	}
	m.reports = append(m.reports, *report)
	return nil
}

func (m *memoryResourceStore) VerifyResource(ctx context.Context, id, source string, at time.Time) (*models.FoodResource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	r := &m.resources[i]
	r.LastVerifiedDate = &at
	r.VerificationSource = source
	r.ReportedClosed = false
	r.ReportedClosedCount = 0
	r.ReportedClosedAt = nil
	out := r.Clone()
	return &out, nil
}

func (m *memoryResourceStore) ListFlagged(ctx context.Context) ([]models.FoodResource, error) {
	m.mu.RLock()
	var out []models.FoodResource
	for _, r := range m.resources {
		if r.ReportedClosed {
			out = append(out, r.Clone())
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ReportedClosedCount != out[j].ReportedClosedCount {
			return out[i].ReportedClosedCount > out[j].ReportedClosedCount
		}
		return reportedAfter(out[i].ReportedClosedAt, out[j].ReportedClosedAt)
	})
	return out, nil
}

// reportedAfter 比较首次反馈时间，较新的在前，空值排最后
func reportedAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}

func (m *memoryResourceStore) ListStaleOrFlagged(ctx context.Context, cutoff time.Time) ([]models.FoodResource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.FoodResource
	for _, r := range m.resources {
		if r.ReportedClosed || r.LastVerifiedDate == nil || r.LastVerifiedDate.Before(cutoff) {
			out = append(out, r.Clone())
		}
	}
	return out, nil
}

func (m *memoryResourceStore) ListReports(ctx context.Context, resourceID string) ([]models.UserReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.UserReport
	for _, rep := range m.reports {
		if rep.ResourceID == resourceID {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (m *memoryResourceStore) CreateSubmission(ctx context.Context, submission *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.submissions {
		if s.ID == submission.ID {
			return ErrConflict
		}
	}
	m.submissions = append(m.submissions, *submission)
	return nil
}

func (m *memoryResourceStore) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	m.mu.RLock()
	out := make([]models.Submission, len(m.submissions))
	copy(out, m.submissions)
	m.mu.RUnlock()

	// 倒序后按时间稳定排序，同一时刻提交的后写入者在前
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}
