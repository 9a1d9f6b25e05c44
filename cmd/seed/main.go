// Command seed 在空库中写入几条示例资源，已有数据时不做任何事
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/foodmap/configs"
	"github.com/foodmap/internal/logger"
	"github.com/foodmap/internal/repositories"
	"github.com/foodmap/internal/services"
	"github.com/foodmap/pkg/db"
)

func strPtr(s string) *string { return &s }

var sampleResources = []services.CreateResourceInput{
	{
		Name:      "Community Food Resource",
		Type:      "Food Pantry",
		Address:   "1854 Shanna Dr, Lancaster, TX 75134",
		Latitude:  "32.5921",
		Longitude: "-96.7561",
		Hours:     strPtr("Mon-Fri: 9:00am-5:00pm"),
	},
	{
		Name:      "Dallas Food Bank",
		Type:      "Food Pantry",
		Address:   "4500 S Cockrell Hill Rd, Dallas, TX 75236",
		Latitude:  "32.7767",
		Longitude: "-96.7970",
		Hours:     strPtr("Mon-Sat: 8:00am-4:00pm"),
		Phone:     strPtr("(214) 330-1396"),
	},
	{
		Name:      "Community Fridge - Oak Cliff",
		Type:      "Community Fridge",
		Address:   "123 Main St, Dallas, TX 75208",
		Latitude:  "32.7505",
		Longitude: "-96.8369",
		Hours:     strPtr("24/7"),
	},
	{
		Name:      "Hot Meal Program",
		Type:      "Hot Meal",
		Address:   "500 Elm St, Dallas, TX 75202",
		Latitude:  "32.7767",
		Longitude: "-96.7970",
		Hours:     strPtr("Daily: 11:00am-1:00pm"),
		Phone:     strPtr("(214) 555-1234"),
	},
}

func main() {
	_ = godotenv.Load()
	l := logger.Setup()
	configs.LoadConfig()
	cfg := configs.AppConfig

	if cfg.DatabaseURL == "" {
		l.Error("DATABASE_URL is not set; nothing to seed")
		os.Exit(1)
	}
	gdb, err := db.InitDB(cfg.DatabaseURL)
	if err != nil {
		l.Error("database_init_failed", "err", err)
		os.Exit(1)
	}
	defer db.CloseDB(gdb)

	ctx := context.Background()
	svc := services.NewResourceService(repositories.NewGormResourceStore(gdb))
	n, err := svc.Count(ctx)
	if err != nil {
		l.Error("count_failed", "err", err)
		os.Exit(1)
	}
	if n > 0 {
		l.Info("seed_skipped", "existing", n)
		return
	}
	for _, in := range sampleResources {
		r, err := svc.Create(ctx, in)
		if err != nil {
			l.Error("seed_failed", "name", in.Name, "err", err)
			os.Exit(1)
		}
		l.Info("seeded", "id", r.ID, "name", r.Name)
	}
}
