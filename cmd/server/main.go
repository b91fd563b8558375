package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazarpos/internal/codegen"
	"bazarpos/internal/config"
	"bazarpos/internal/infra"
	"bazarpos/internal/repository"
	"bazarpos/internal/router"
	"bazarpos/internal/service"
	"bazarpos/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}
	if err := infra.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Startup seeding: default admin and codes for products created before codes existed
	authSvc := service.NewAuthService(repository.NewUsuarioRepository(db), cfg)
	if _, err := authSvc.EnsureAdmin(ctx, cfg.AdminDefaultPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admin user")
	}
	productoSvc := service.NewProductoService(repository.NewProductoRepository(db),
		codegen.New(codegen.WithMaxAttempts(cfg.CodeMaxAttempts)))
	if _, err := productoSvc.BackfillCodigos(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to backfill product codes")
	}

	// Redis is optional: without it receipts are rendered on download
	var rdb *redis.Client
	var pool *worker.Pool
	if cfg.RedisURL != "" {
		if rdb, err = infra.NewRedis(ctx, cfg.RedisURL); err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		pool = worker.NewPool(rdb, cfg.WorkerPoolSize)
		pool.Handle(worker.QueueComprobante, worker.JobComprobante,
			worker.NewComprobanteWorker(repository.NewVentaRepository(db), cfg.StoreName, cfg.PDFStoragePath))
		pool.Start(ctx)
	} else {
		log.Info().Msg("REDIS_URL not set: receipt queue disabled")
	}

	r := router.New(cfg, db, rdb, nil)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("addr", srv.Addr).Str("tienda", cfg.StoreName).Msg("bazarpos listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("server exited")
}
