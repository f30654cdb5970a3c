package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/musicuration-desk/internal/config"
	"github.com/iliyamo/musicuration-desk/internal/database"
	"github.com/iliyamo/musicuration-desk/internal/handler"
	"github.com/iliyamo/musicuration-desk/internal/logging"
	"github.com/iliyamo/musicuration-desk/internal/repository"
	"github.com/iliyamo/musicuration-desk/internal/router"
	"github.com/iliyamo/musicuration-desk/internal/service"
	"github.com/iliyamo/musicuration-desk/internal/utils"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
			logging.Fatal().Err(err).Msg("migrate database")
		}
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("redis unavailable, rate limiting and cache disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var events service.Publisher = service.NopPublisher{}
	if cfg.AuditEnabled {
		events = service.NewAMQPPublisher(cfg.RabbitURL)
	}

	store := repository.NewStore(db)
	codec := utils.NewTokenCodec(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	auth := service.NewAuthService(store, codec, cfg.BcryptCost, events)

	e := router.New(router.Deps{
		Auth:          handler.NewAuthHandler(auth),
		Catalog:       handler.NewCatalogHandler(store),
		Collections:   handler.NewCollectionHandler(service.NewCollectionService(store, events)),
		Authenticator: auth,
		DB:            db,
		Redis:         rdb,
		RateLimit:     config.LoadRateLimitConfig(),
		Cache:         config.LoadCacheConfig(),
	})

	addr := ":" + cfg.Port
	go func() {
		logging.Info().Str("addr", addr).Str("env", cfg.Env).Str("driver", cfg.DBDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown")
	}
}
