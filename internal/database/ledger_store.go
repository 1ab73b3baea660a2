package database

import (
	"context"
	"fmt"

	"github.com/mroshb/quizbot/internal/config"
	"github.com/mroshb/quizbot/internal/ledger"
	"github.com/mroshb/quizbot/pkg/logger"
	"gorm.io/gorm"
)

// OpenLedgerStore builds the ledger store selected by LEDGER_BACKEND. The
// returned close function releases any connection it opened.
func OpenLedgerStore(ctx context.Context, cfg *config.Config) (ledger.Store, func(), error) {
	switch cfg.LedgerBackend {
	case config.LedgerBackendFile:
		logger.Info("Using file ledger", "path", cfg.LedgerFile)
		return ledger.NewFileStore(cfg.LedgerFile), func() {}, nil

	case config.LedgerBackendPostgres:
		db, err := Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		return gormLedgerStore(db)

	case config.LedgerBackendRedis:
		client, err := ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return ledger.NewRedisStore(client, cfg.RedisKeyPrefix), func() { _ = client.Close() }, nil
	}

	return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
}

// gormLedgerStore migrates db and wraps it as a ledger store. The pool is
// closed when migration fails.
func gormLedgerStore(db *gorm.DB) (ledger.Store, func(), error) {
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := AutoMigrate(db); err != nil {
		closeFn()
		return nil, nil, err
	}
	return ledger.NewGormStore(db), closeFn, nil
}
