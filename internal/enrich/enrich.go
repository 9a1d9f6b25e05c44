package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/services"
	"github.com/foodmap/pkg/geo"
	"github.com/foodmap/pkg/geocode"
)

// DefaultPace 相邻两次地理编码请求之间的间隔
const DefaultPace = 250 * time.Millisecond

const (
	reasonEmptyAddress = "Empty address"
	reasonFailed       = "Geocoding failed after retries"
)

// Geocoder 地址转坐标，由 *geocode.Client 实现（自带重试）
type Geocoder interface {
	Search(ctx context.Context, text string) (*geocode.Candidate, error)
}

// FailedRow 写入 geocoding-failed.json 的记录
type FailedRow struct {
	Row
	Error string `json:"error"`
}

// Result 一次补全的统计
type Result struct {
	Total       int
	Missing     int
	Succeeded   int
	Failed      int
	OutOfBounds int
	FailedRows  []FailedRow
}

// SuccessRate 百分比，没有需要处理的行时为 100
func (r Result) SuccessRate() float64 {
	if r.Missing == 0 {
		return 100
	}
	return float64(r.Succeeded) / float64(r.Missing) * 100
}

// Enricher 逐行补全坐标
type Enricher struct {
	geocoder Geocoder
	bounds   geo.Bounds
	pace     time.Duration
	log      *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// New bounds 只用于告警，区域外的结果仍会写入
func New(g Geocoder, bounds geo.Bounds) *Enricher {
	return &Enricher{
		geocoder: g,
		bounds:   bounds,
		pace:     DefaultPace,
		log:      logger.L(),
		sleep:    sleepContext,
	}
}

// Run 原地修改 rows 中缺失坐标的行。
// API Key 无效或 ctx 取消时中止并返回错误，其余失败计入 Result。
func (e *Enricher) Run(ctx context.Context, rows []Row) (Result, error) {
	res := Result{Total: len(rows)}
	var pending []int
	for i := range rows {
		if rows[i].NeedsCoordinates() {
			pending = append(pending, i)
		}
	}
	res.Missing = len(pending)

	for n, idx := range pending {
		row := &rows[idx]
		l := e.log.With("row", n+1, "of", len(pending), "name", row.Name)

		if strings.TrimSpace(row.Address) == "" {
			l.Warn("geocode_skipped", "reason", reasonEmptyAddress)
			res.Failed++
			res.FailedRows = append(res.FailedRows, FailedRow{Row: *row, Error: reasonEmptyAddress})
			continue
		}

		cand, err := e.geocoder.Search(ctx, row.Address)
		switch {
		case err == nil:
			row.Latitude = strconv.FormatFloat(cand.Lat, 'f', -1, 64)
			row.Longitude = strconv.FormatFloat(cand.Lon, 'f', -1, 64)
			res.Succeeded++
			if !e.bounds.Contains(cand.Point()) {
				res.OutOfBounds++
				l.Warn("geocode_out_of_region", "lat", cand.Lat, "lon", cand.Lon, "formatted", cand.Formatted, "bounds", e.bounds.String())
			} else {
				l.Info("geocoded", "lat", cand.Lat, "lon", cand.Lon, "confidence", cand.Confidence)
			}
		case errors.Is(err, geocode.ErrInvalidKey), errors.Is(err, geocode.ErrNotConfigured):
			return res, err
		case ctx.Err() != nil:
			return res, ctx.Err()
		default:
			l.Warn("geocode_failed", "address", row.Address, "err", err)
			res.Failed++
			res.FailedRows = append(res.FailedRows, FailedRow{Row: *row, Error: reasonFailed})
		}

		if n < len(pending)-1 {
			if err := e.sleep(ctx, e.pace); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

// ImportResult 导入统计
type ImportResult struct {
	Imported   int
	Duplicates int
	Skipped    int
}

// Import 将带坐标的行写入存储；同名同地址的资源视为已存在而跳过
func Import(ctx context.Context, svc services.ResourceService, rows []Row) (ImportResult, error) {
	var res ImportResult
	existing, err := svc.List(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("list existing resources: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		seen[dedupeKey(r.Name, r.Address)] = true
	}

	for _, row := range rows {
		if row.NeedsCoordinates() {
			res.Skipped++
			continue
		}
		key := dedupeKey(row.Name, row.Address)
		if seen[key] {
			res.Duplicates++
			continue
		}
		_, err := svc.Create(ctx, row.CreateInput())
		if err != nil {
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				logger.L().Warn("import_row_invalid", "name", row.Name, "err", err)
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("import %q: %w", row.Name, err)
		}
		seen[key] = true
		res.Imported++
	}
	return res, nil
}

// CreateInput 转换为创建资源的参数
func (r Row) CreateInput() services.CreateResourceInput {
	return services.CreateResourceInput{
		Name:                r.Name,
		Type:                r.Type,
		Address:             r.Address,
		Latitude:            r.Latitude,
		Longitude:           r.Longitude,
		Hours:               optional(r.Hours),
		Phone:               optional(r.Phone),
		AppointmentRequired: parseBool(r.AppointmentRequired),
	}
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}

func dedupeKey(name, address string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(address))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
