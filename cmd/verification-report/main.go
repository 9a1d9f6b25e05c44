// Command verification-report 打印需要复核的资源清单，可选导出 CSV / XLSX
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/foodmap/configs"
	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/reporting"
	"github.com/foodmap/internal/repositories"
	"github.com/foodmap/internal/services"
	"github.com/foodmap/pkg/db"
)

func main() {
	_ = godotenv.Load()
	l := logger.Setup()
	configs.LoadConfig()
	cfg := configs.AppConfig

	days := flag.Int("days", cfg.StaleDays, "days since last verification before a resource is stale")
	csvOut := flag.Bool("csv", false, "also write verification-report-YYYY-MM-DD.csv")
	xlsxOut := flag.Bool("xlsx", false, "also write verification-report-YYYY-MM-DD.xlsx")
	dir := flag.String("dir", ".", "output directory for exported files")
	flag.Parse()

	if cfg.DatabaseURL == "" {
		l.Error("DATABASE_URL is not set; the report needs persistent storage")
		os.Exit(1)
	}
	gdb, err := db.InitDB(cfg.DatabaseURL)
	if err != nil {
		l.Error("database_init_failed", "err", err)
		os.Exit(1)
	}
	defer db.CloseDB(gdb)

	svc := services.NewVerificationService(repositories.NewGormResourceStore(gdb))
	report, err := reporting.RunOnce(context.Background(), svc, *days, os.Stdout)
	if err != nil {
		l.Error("verification_report_failed", "err", err)
		os.Exit(1)
	}

	if *csvOut {
		path := filepath.Join(*dir, reporting.CSVFilename(report.GeneratedAt))
		if err := writeFile(path, func(f *os.File) error { return reporting.WriteCSV(f, report) }); err != nil {
			l.Error("csv_export_failed", "path", path, "err", err)
			os.Exit(1)
		}
		fmt.Printf("CSV report saved to: %s\n", path)
	}
	if *xlsxOut {
		path := filepath.Join(*dir, reporting.XLSXFilename(report.GeneratedAt))
		if err := writeFile(path, func(f *os.File) error { return reporting.WriteXLSX(f, report) }); err != nil {
			l.Error("xlsx_export_failed", "path", path, "err", err)
			os.Exit(1)
		}
		fmt.Printf("Excel report saved to: %s\n", path)
	}
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
