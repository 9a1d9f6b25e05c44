// Package reporting 渲染待核实报告：终端文本、CSV 与 Excel，并提供进程内的每周调度
package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/foodmap/internal/models"
)

const (
	dateLayout = "2006-01-02"
	ruleWidth  = 80
)

// CSVHeaders 导出列，顺序固定
var CSVHeaders = []string{"Name", "Address", "Last Verified", "Days Since Verification", "Reported Closed", "Report Count"}

// CSVFilename 按生成日期命名，例如 verification-report-2025-06-02.csv
func CSVFilename(generatedAt time.Time) string {
	return fmt.Sprintf("verification-report-%s.csv", generatedAt.Format(dateLayout))
}

// XLSXFilename 与 CSVFilename 相同，扩展名为 .xlsx
func XLSXFilename(generatedAt time.Time) string {
	return fmt.Sprintf("verification-report-%s.xlsx", generatedAt.Format(dateLayout))
}

// lastVerified 从未核实显示 Never
func lastVerified(r models.ResourceNeedingVerification) string {
	if r.LastVerifiedDate == nil {
		return "Never"
	}
	return r.LastVerifiedDate.Format(dateLayout)
}

// PrintReport 输出人工阅读的报告
func PrintReport(w io.Writer, report *models.VerificationReport) error {
	rule := strings.Repeat("=", ruleWidth)
	var b strings.Builder

	fmt.Fprintf(&b, "\n%s\nWEEKLY VERIFICATION REPORT\n%s\n", rule, rule)
	fmt.Fprintf(&b, "\nSummary (%d days threshold):\n", report.DaysThreshold)
	fmt.Fprintf(&b, "   Total Resources: %d\n", report.TotalResources)
	fmt.Fprintf(&b, "   Needs Verification: %d\n", report.NeedsVerification)
	fmt.Fprintf(&b, "   Reported Closed: %d\n", report.ReportedClosed)
	fmt.Fprintf(&b, "   Up to Date: %d\n", report.UpToDate)

	if report.NeedsVerification == 0 {
		b.WriteString("\nAll locations are up to date! No action needed.\n")
	} else {
		fmt.Fprintf(&b, "\nLOCATIONS NEEDING REVIEW (%d):\n%s\n", report.NeedsVerification, rule)
		for i, loc := range report.LocationsToVerify {
			fmt.Fprintf(&b, "\n%d. %s\n", i+1, loc.Name)
			fmt.Fprintf(&b, "   Address: %s\n", loc.Address)
			fmt.Fprintf(&b, "   Last Verified: %s\n", lastVerified(loc))
			fmt.Fprintf(&b, "   Days Since Verification: %d\n", loc.DaysSinceVerification)
			if loc.ReportedClosed {
				fmt.Fprintf(&b, "   REPORTED CLOSED - %d report(s)\n", loc.ReportedClosedCount)
			}
		}
		fmt.Fprintf(&b, "\n%s\nACTION ITEMS:\n%s\n", rule, rule)
		b.WriteString("1. Review flagged locations at: /verification-review\n")
		b.WriteString("2. Call or visit locations to verify they're still operational\n")
		b.WriteString("3. Mark as verified or remove from database\n")
	}
	fmt.Fprintf(&b, "\n%s\n\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteCSV 按 CSVHeaders 写出，每个待核实资源一行
func WriteCSV(w io.Writer, report *models.VerificationReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeaders); err != nil {
		return err
	}
	for _, loc := range report.LocationsToVerify {
		row := []string{
			loc.Name,
			loc.Address,
			lastVerified(loc),
			strconv.Itoa(loc.DaysSinceVerification),
			strconv.FormatBool(loc.ReportedClosed),
			strconv.Itoa(loc.ReportedClosedCount),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
