package main

import (
	"context"
	"flag"
	"time"

	"github.com/likewatch-dev/likewatch/internal/config"
	"github.com/likewatch-dev/likewatch/internal/domain"
	"github.com/likewatch-dev/likewatch/internal/logging"
	"github.com/likewatch-dev/likewatch/internal/seed"
	spg "github.com/likewatch-dev/likewatch/internal/storage/postgres"
)

func main() {
	seedVal := flag.Int64("seed", 1, "PRNG seed for reproducible datasets")
	reset := flag.Bool("reset", false, "truncate entities and events before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallback := logging.New("info", "console")
		fallback.Fatal().Err(err).Msg("config")
	}
	log := logging.New(cfg.LogLevel, "console")

	ctx := context.Background()
	db, err := spg.Connect(ctx, cfg.PostgresDSN, int32(cfg.PostgresMaxConns))
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("migrations")
	}

	writer := spg.NewWriter(db)
	if *reset {
		if err := writer.Truncate(ctx); err != nil {
			log.Fatal().Err(err).Msg("reset")
		}
		log.Info().Msg("tables truncated")
	}

	genCfg := seed.DefaultConfig(time.Now())
	genCfg.Seed = *seedVal
	res := seed.Generate(genCfg)

	nEnt, err := writer.InsertEntities(ctx, res.Entities)
	if err != nil {
		log.Fatal().Err(err).Msg("insert entities")
	}
	nEv, err := writer.InsertEvents(ctx, res.Events)
	if err != nil {
		log.Fatal().Err(err).Msg("insert events")
	}

	log.Info().
		Int64("entities", nEnt).
		Int64("events", nEv).
		Str("target_subject", res.TargetSubject).
		Str("attack_hour", domain.FormatHour(res.AttackHour)).
		Msg("seed complete")
}
