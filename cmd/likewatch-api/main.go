package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/likewatch-dev/likewatch/internal/config"
	"github.com/likewatch-dev/likewatch/internal/forensics"
	"github.com/likewatch-dev/likewatch/internal/logging"
	spg "github.com/likewatch-dev/likewatch/internal/storage/postgres"
	transport "github.com/likewatch-dev/likewatch/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info", "console")
		fallback.Fatal().Err(err).Msg("config")
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("port", cfg.Port).Msg("starting likewatch-api")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := spg.Connect(ctx, cfg.PostgresDSN, int32(cfg.PostgresMaxConns))
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migrations")
	}
	log.Info().Msg("db ready, migrations applied")

	engine, err := forensics.NewEngine(spg.NewStore(db), cfg.Detection, log)
	if err != nil {
		log.Fatal().Err(err).Msg("forensics engine")
	}

	deps := &transport.ServerDeps{
		Cfg:    cfg,
		Engine: engine,
		Store:  db,
		Log:    log,
		Now:    func() time.Time { return time.Now().UTC() },
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           deps.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()
	_ = srv.Shutdown(shutdownCtx)
	log.Info().Msg("shut down")
}
