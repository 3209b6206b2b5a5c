package main

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/emberhollow/tradepost/internal/adapter/cache"
	"github.com/emberhollow/tradepost/internal/adapter/pg"
	"github.com/emberhollow/tradepost/internal/api/http"
	"github.com/emberhollow/tradepost/internal/config"
	"github.com/emberhollow/tradepost/internal/core"
	"github.com/emberhollow/tradepost/internal/ledger"
	"github.com/emberhollow/tradepost/internal/port"
	"github.com/emberhollow/tradepost/pkg/logger"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	log := logger.New("exchange", nil)

	repo, err := pg.NewRepo(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Error("failed to connect to Postgres")
		return
	}
	defer repo.Close()

	led, closeLedger, err := buildLedger(cfg)
	if err != nil {
		log.WithError(err).Error("failed to open resource ledger")
		return
	}
	defer closeLedger()

	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)

	engine := core.NewEngine(repo, led, redisCache, log, cfg.Currency)
	if err := engine.LoadState(ctx); err != nil {
		log.WithError(err).Error("failed to restore engine state")
		return
	}

	server := http.NewHTTPServer(engine, cfg.RateLimit)
	log.WithField("addr", cfg.HTTPAddr).Info("starting HTTP server")
	if err := server.Run(cfg.HTTPAddr); err != nil {
		log.WithError(err).Error("HTTP server failed")
	}
}

func buildLedger(cfg *config.Config) (port.Ledger, func(), error) {
	switch cfg.LedgerStrategy {
	case config.LedgerMemory:
		return ledger.NewMemory(cfg.Currency), func() {}, nil
	case config.LedgerColumn:
		db, err := sql.Open("postgres", cfg.LedgerDSN)
		if err != nil {
			return nil, nil, err
		}
		return ledger.NewColumnLedger(db, cfg.Currency), func() { _ = db.Close() }, nil
	default:
		db, err := sql.Open("postgres", cfg.LedgerDSN)
		if err != nil {
			return nil, nil, err
		}
		return ledger.NewKeyedLedger(db, cfg.Currency), func() { _ = db.Close() }, nil
	}
}
