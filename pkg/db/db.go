package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq" // database/sql 驱动 "postgres"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Backend 表示启动时选定的存储后端
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// DetectBackend 根据 DATABASE_URL 选择后端：
// 空串为内存存储，postgres:// 或 postgresql:// 为 Postgres，其余按 SQLite 文件处理
func DetectBackend(dsn string) Backend {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return BackendMemory
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return BackendPostgres
	default:
		return BackendSQLite
	}
}

// Options 连接参数
type Options struct {
	LogLevel     logger.LogLevel
	MaxOpenConns int
	MaxIdleConns int
}

// DefaultOptions 连接池上限 100、空闲 10；LOG_LEVEL=debug 时打印全部 SQL
func DefaultOptions() Options {
	lvl := logger.Warn
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		lvl = logger.Info
	}
	return Options{LogLevel: lvl, MaxOpenConns: 100, MaxIdleConns: 10}
}

// Open 打开数据库并执行迁移，不修改包级实例，测试中可直接使用
func Open(dsn string, opts Options) (*gorm.DB, error) {
	// 配置 GORM 日志级别
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second, // 慢 SQL 阈值
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true, // 忽略ErrRecordNotFound（记录未找到）错误
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{Logger: newLogger}

	var (
		gdb *gorm.DB
		err error
	)
	switch DetectBackend(dsn) {
	case BackendPostgres:
		gdb, err = openPostgres(dsn, cfg)
	case BackendSQLite:
		gdb, err = openSQLite(dsn, cfg)
	default:
		return nil, fmt.Errorf("DATABASE_URL is empty, relational backend not configured")
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}
	if isMemorySQLite(dsn) {
		// 每个连接都是独立的内存库，只能保留一个连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := Migrate(gdb); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return gdb, nil
}

// openPostgres 先用 lib/pq 建立连接池，再交给 GORM 的 postgres 方言
func openPostgres(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), cfg)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to initialise gorm for postgres: %w", err)
	}
	return gdb, nil
}

func openSQLite(dsn string, cfg *gorm.Config) (*gorm.DB, error) {
	if path := sqliteFilePath(dsn); path != "" {
		// 确保数据库文件所在的目录存在
		dbDir := filepath.Dir(path)
		if _, err := os.Stat(dbDir); os.IsNotExist(err) {
			log.Printf("Database directory %s does not exist, creating it...", dbDir)
			if mkErr := os.MkdirAll(dbDir, 0755); mkErr != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, mkErr)
			}
		}
	}
	gdb, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return gdb, nil
}

func isMemorySQLite(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory") || strings.HasPrefix(dsn, "file::memory:")
}

// sqliteFilePath 从 DSN 中取出文件路径，内存库返回空串
func sqliteFilePath(dsn string) string {
	if isMemorySQLite(dsn) {
		return ""
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}

// InitDB 打开数据库并记录所选后端，返回的实例由调用方负责 CloseDB
func InitDB(dsn string) (*gorm.DB, error) {
	gdb, err := Open(dsn, DefaultOptions())
	if err != nil {
		return nil, err
	}
	log.Printf("Successfully connected to %s database", DetectBackend(dsn))
	return gdb, nil
}

// CloseDB 关闭 GORM 数据库连接 (通常在应用退出时调用)
func CloseDB(gdb *gorm.DB) {
	if gdb == nil {
		return
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB for closing: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
		return
	}
	log.Println("Database connection closed.")
}
