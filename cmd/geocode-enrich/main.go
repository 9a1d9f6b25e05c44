// Command geocode-enrich 为资源 CSV 中缺少坐标的行补全经纬度并写回原文件。
// 失败的行写入 JSON 以便人工处理；-import 时把带坐标的行导入数据库。
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/foodmap/configs"
	"github.com/foodmap/internal/enrich"
	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/repositories"
	"github.com/foodmap/internal/services"
	"github.com/foodmap/pkg/db"
	"github.com/foodmap/pkg/geocode"
)

func main() {
	_ = godotenv.Load()
	logger.Setup()
	configs.LoadConfig()
	cfg := configs.AppConfig

	in := flag.String("in", "data/sample-food-resources.csv", "resource CSV to enrich in place")
	failedOut := flag.String("failed", "geocoding-failed.json", "where to write rows that could not be geocoded")
	doImport := flag.Bool("import", false, "import rows with coordinates into DATABASE_URL after enriching")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *in, *failedOut, *doImport); err != nil {
		logger.L().Error("geocode_enrich_failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg configs.Configuration, in, failedOut string, doImport bool) error {
	client := geocode.New(geocode.Options{APIKey: cfg.GeoapifyAPIKey, Timeout: cfg.GeocodeTimeout})
	if err := client.ValidateKey(ctx); err != nil {
		switch {
		case errors.Is(err, geocode.ErrNotConfigured):
			return fmt.Errorf("GEOAPIFY_API_KEY is not set")
		case errors.Is(err, geocode.ErrInvalidKey):
			return fmt.Errorf("GEOAPIFY_API_KEY was rejected by the geocoding service")
		}
		return fmt.Errorf("validate api key: %w", err)
	}

	raw, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	rows, err := enrich.ReadRows(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", in, err)
	}

	res, runErr := enrich.New(client, cfg.RegionBounds).Run(ctx, rows)
	// 中途停止时也写回已补全的行
	var out bytes.Buffer
	if err := enrich.WriteRows(&out, rows); err != nil {
		return err
	}
	if err := os.WriteFile(in, out.Bytes(), 0o644); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("Total rows: %d\n", res.Total)
	fmt.Printf("Missing coordinates: %d\n", res.Missing)
	fmt.Printf("Geocoded: %d\n", res.Succeeded)
	fmt.Printf("Failed: %d\n", res.Failed)
	if res.OutOfBounds > 0 {
		fmt.Printf("Outside %s: %d (check these manually)\n", cfg.RegionBounds, res.OutOfBounds)
	}
	fmt.Printf("Success rate: %.1f%%\n", res.SuccessRate())

	if len(res.FailedRows) > 0 {
		data, err := json.MarshalIndent(res.FailedRows, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(failedOut, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("Failed rows written to: %s\n", failedOut)
	}

	if doImport {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("-import requires DATABASE_URL")
		}
		gdb, err := db.InitDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.CloseDB(gdb)
		imported, err := enrich.Import(ctx, services.NewResourceService(repositories.NewGormResourceStore(gdb)), rows)
		if err != nil {
			return err
		}
		logger.L().Info("import_done", "imported", imported.Imported, "duplicates", imported.Duplicates, "skipped", imported.Skipped)
	}

	if res.Failed > 0 {
		return fmt.Errorf("%d row(s) could not be geocoded", res.Failed)
	}
	return nil
}
