package db

import (
	"strings"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/foodmap/internal/models"
)

// Migrate 按顺序执行版本化迁移
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			// 早期表结构中 reported_closed_count 为 varchar，先转换为整数列
			ID: "20250101_convert_reported_closed_count",
			Migrate: func(tx *gorm.DB) error {
				if tx.Dialector.Name() != "postgres" || !tx.Migrator().HasTable("food_resources") {
					return nil
				}
				cols, err := tx.Migrator().ColumnTypes("food_resources")
				if err != nil {
					return err
				}
				for _, c := range cols {
					if c.Name() != "reported_closed_count" {
						continue
					}
					switch strings.ToLower(c.DatabaseTypeName()) {
					case "varchar", "text", "character varying":
						if err := tx.Exec(`ALTER TABLE food_resources ALTER COLUMN reported_closed_count DROP DEFAULT`).Error; err != nil {
							return err
						}
						return tx.Exec(`ALTER TABLE food_resources ALTER COLUMN reported_closed_count TYPE bigint USING COALESCE(NULLIF(reported_closed_count, ''), '0')::bigint`).Error
					}
				}
				return nil
			},
		},
		{
			ID: "20250102_create_food_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.FoodResource{}, &models.Submission{}, &models.UserReport{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.UserReport{}, &models.Submission{}, &models.FoodResource{})
			},
		},
		{
			// 旧数据没有 created_at，用核实时间回填以保持稳定排序
			ID: "20250103_backfill_created_at",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(`UPDATE food_resources SET created_at = COALESCE(last_verified_date, CURRENT_TIMESTAMP) WHERE created_at IS NULL`).Error
			},
		},
	})
	return m.Migrate()
}
