package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mroshb/quizbot/internal/config"
	"github.com/mroshb/quizbot/internal/ledger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestOpenLedgerStore(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		cfg := &config.Config{
			LedgerBackend: config.LedgerBackendFile,
			LedgerFile:    filepath.Join(t.TempDir(), "scores.json"),
		}
		store, closeFn, err := OpenLedgerStore(ctx, cfg)
		if err != nil {
			t.Fatalf("OpenLedgerStore failed: %v", err)
		}
		defer closeFn()
		if _, ok := store.(*ledger.FileStore); !ok {
			t.Errorf("expected *ledger.FileStore, got %T", store)
		}
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := &config.Config{
			LedgerBackend:  config.LedgerBackendRedis,
			RedisAddr:      mr.Addr(),
			RedisKeyPrefix: "test",
		}
		store, closeFn, err := OpenLedgerStore(ctx, cfg)
		if err != nil {
			t.Fatalf("OpenLedgerStore failed: %v", err)
		}
		defer closeFn()
		if _, ok := store.(*ledger.RedisStore); !ok {
			t.Errorf("expected *ledger.RedisStore, got %T", store)
		}
	})

	t.Run("redis unreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		cfg := &config.Config{LedgerBackend: config.LedgerBackendRedis, RedisAddr: addr}
		if _, _, err := OpenLedgerStore(ctx, cfg); err == nil {
			t.Error("expected an error for an unreachable server")
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := &config.Config{LedgerBackend: "mongo"}
		if _, _, err := OpenLedgerStore(ctx, cfg); err == nil {
			t.Error("expected an error for an unknown backend")
		}
	})
}

func openSQLite(t *testing.T, params string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared%s", strings.ReplaceAll(t.Name(), "/", "_"), params)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestGormLedgerStore(t *testing.T) {
	t.Run("migrates", func(t *testing.T) {
		db := openSQLite(t, "")
		store, closeFn, err := gormLedgerStore(db)
		if err != nil {
			t.Fatalf("gormLedgerStore failed: %v", err)
		}
		defer closeFn()
		if _, ok := store.(*ledger.GormStore); !ok {
			t.Errorf("expected *ledger.GormStore, got %T", store)
		}
	})

	t.Run("migration failure closes pool", func(t *testing.T) {
		db := openSQLite(t, "&_query_only=1")
		if _, _, err := gormLedgerStore(db); err == nil {
			t.Fatal("expected migration to fail on a read-only database")
		}
		sqlDB, err := db.DB()
		if err != nil {
			t.Fatalf("sql db: %v", err)
		}
		if err := sqlDB.Ping(); err == nil {
			t.Error("expected the pool to be closed")
		}
	})
}
