package reporting

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/models"
)

// ReportSource 生成待核实报告，由 services.VerificationService 实现
type ReportSource interface {
	ListNeedingVerification(ctx context.Context, days int) (*models.VerificationReport, error)
}

// nextMondayAt 计算 from 之后下一个周一 hour 点（当周已过则顺延一周）
func nextMondayAt(from time.Time, loc *time.Location, hour int) time.Time {
	now := from.In(loc)
	for i := 0; i <= 7; i++ {
		d := now.AddDate(0, 0, i)
		if d.Weekday() == time.Monday {
			t := time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, loc)
			if t.After(now) {
				return t
			}
		}
	}
	d := now.AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, loc)
}

// RunOnce 生成一次报告，摘要写日志，全文写入 out（可为 nil）
func RunOnce(ctx context.Context, src ReportSource, days int, out io.Writer) (*models.VerificationReport, error) {
	report, err := src.ListNeedingVerification(ctx, days)
	if err != nil {
		return nil, err
	}
	logger.L().Info("verification_report",
		"days", report.DaysThreshold,
		"total", report.TotalResources,
		"needs_verification", report.NeedsVerification,
		"reported_closed", report.ReportedClosed,
		"up_to_date", report.UpToDate)
	if out != nil {
		if err := PrintReport(out, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

// StartWeekly 在后台协程中每周一 hour 点生成报告，ctx 取消后退出。
// 错误只记录日志，不影响下一次调度。
func StartWeekly(ctx context.Context, src ReportSource, days, hour int, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	l := logger.L()
	next := nextMondayAt(time.Now(), loc, hour)
	l.Info("verification_schedule", "next", next)
	go func() {
		for {
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			var buf strings.Builder
			if _, err := RunOnce(ctx, src, days, &buf); err != nil {
				l.Error("verification_report_error", "err", err)
			} else {
				l.Debug("verification_report_text", "text", buf.String())
			}
			next = next.AddDate(0, 0, 7)
		}
	}()
}
