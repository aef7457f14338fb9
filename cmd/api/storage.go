package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-stay-reservation/internal/api/handler"
	"github.com/sanosuguru/go-stay-reservation/internal/config"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/block"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-stay-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-stay-reservation/internal/infrastructure/memory"
	"github.com/sanosuguru/go-stay-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-stay-reservation/internal/pkg/logger"
)

// storage は STORE で選んだ保存先のリポジトリ一式
type storage struct {
	reservations reservation.Repository
	blocks       block.Repository
	txManager    transaction.Manager
	// health は nil ならヘルスチェックに含めない
	health handler.HealthCheck
	close  func()
}

func openStorage(cfg *config.Config) storage {
	if cfg.Store == config.StoreMemory {
		logger.Warn("インメモリストアで起動します。再起動するとデータは失われます")
		s := memory.NewStore()
		return storage{
			reservations: memory.NewReservationRepository(s),
			blocks:       memory.NewBlockRepository(s),
			txManager:    memory.NewTxManager(s),
			close:        func() {},
		}
	}

	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続エラー", zap.Error(err))
	}
	if cfg.Migrations.Enabled {
		version, err := postgres.RunMigrations(db, cfg.Migrations.Path)
		if err != nil {
			logger.Fatal("マイグレーションエラー", zap.Error(err))
		}
		logger.Info("マイグレーション完了", zap.Uint("version", version))
	}
	return storage{
		reservations: postgres.NewReservationRepository(db),
		blocks:       postgres.NewBlockRepository(db),
		txManager:    postgres.NewTxManager(db),
		health:       func(ctx context.Context) error { return postgres.Ping(ctx, db) },
		close:        func() { _ = db.Close() },
	}
}
