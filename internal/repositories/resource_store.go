package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/foodmap/internal/models"
)

// ErrNotFound 表示目标记录不存在
var ErrNotFound = errors.New("record not found")

// ErrConflict 表示主键或唯一约束冲突，目前仅在重复 ID 写入时出现
var ErrConflict = errors.New("record already exists")

// ResourceStore 定义了食物资源、用户提交与用户反馈的存储接口。
// 服务层只依赖此接口，后端在启动时选定（内存或关系数据库）。
type ResourceStore interface {
	// ListResources 返回全部资源，按存储自然顺序（内存：插入顺序；数据库：created_at, id）
	ListResources(ctx context.Context) ([]models.FoodResource, error)
	// GetResource 按 ID 查询，不存在时返回 ErrNotFound
	GetResource(ctx context.Context, id string) (*models.FoodResource, error)
	CreateResource(ctx context.Context, resource *models.FoodResource) error
	CountResources(ctx context.Context) (int64, error)
	// DeleteResource 物理删除资源，不级联删除其反馈记录
	DeleteResource(ctx context.Context, id string) error

	// RecordReport 追加一条反馈；类型为 closed 时在同一事务内原子地累加计数、置位标记，
	// reported_closed_at 仅在为空时写入。资源不存在时返回 ErrNotFound 且不写入反馈。
	RecordReport(ctx context.Context, report *models.UserReport) error
	// VerifyResource 刷新核实时间与来源并清除关闭标记，返回更新后的资源
	VerifyResource(ctx context.Context, id, source string, at time.Time) (*models.FoodResource, error)
	// ListFlagged 返回被标记为关闭的资源，按反馈次数降序、首次反馈时间降序
	ListFlagged(ctx context.Context) ([]models.FoodResource, error)
	// ListStaleOrFlagged 返回核实时间早于 cutoff（或从未核实）以及被标记的资源
	ListStaleOrFlagged(ctx context.Context, cutoff time.Time) ([]models.FoodResource, error)
	ListReports(ctx context.Context, resourceID string) ([]models.UserReport, error)

	CreateSubmission(ctx context.Context, submission *models.Submission) error
	// ListSubmissions 按提交时间倒序返回
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
}

// isUniqueViolation 识别 Postgres（lib/pq 23505）与 SQLite 的唯一约束错误
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
