package db

import (
	"testing"

	"gorm.io/gorm/logger"
)

func TestDetectBackend(t *testing.T) {
	tests := map[string]Backend{
		"":                              BackendMemory,
		"  ":                            BackendMemory,
		"postgres://u:p@db:5432/food":   BackendPostgres,
		"postgresql://u:p@db:5432/food": BackendPostgres,
		"file:data/food.db?_fk=1":       BackendSQLite,
		":memory:":                      BackendSQLite,
	}
	for dsn, want := range tests {
		if got := DetectBackend(dsn); got != want {
			t.Errorf("DetectBackend(%q) = %s, want %s", dsn, got, want)
		}
	}
}

func TestCloseDBClosesGivenInstance(t *testing.T) {
	gdb, err := Open(":memory:", Options{LogLevel: logger.Silent, MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatal(err)
	}
	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("ping before close: %v", err)
	}
	CloseDB(gdb)
	if err := sqlDB.Ping(); err == nil {
		t.Error("connection should be closed")
	}
	CloseDB(nil)
}

func TestSQLiteFilePath(t *testing.T) {
	if got := sqliteFilePath("file:data/food.db?cache=shared"); got != "data/food.db" {
		t.Errorf("path = %q", got)
	}
	if got := sqliteFilePath("file::memory:?cache=shared"); got != "" {
		t.Errorf("memory dsn path = %q", got)
	}
}
