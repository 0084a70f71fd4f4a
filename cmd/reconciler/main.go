package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"wayfarer/internal/adapters/observability"
	"wayfarer/internal/adapters/places"
	redisad "wayfarer/internal/adapters/redis"
	"wayfarer/internal/app"
	"wayfarer/internal/domain"
	"wayfarer/internal/shared"
	mysqlrepo "wayfarer/internal/storage/mysql"
)

// Reads a JSON array of recommendations from the file named by
// BATCH_FILE (or the first argument) and runs both pipeline passes.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	path := os.Getenv("BATCH_FILE")
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if path == "" {
		log.Fatal().Msg("no batch file; set BATCH_FILE or pass a path")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("read batch file failed")
	}
	var recs []domain.Recommendation
	if err := json.Unmarshal(raw, &recs); err != nil {
		log.Fatal().Err(err).Msg("batch file is not a JSON array of recommendations")
	}

	log.Info().
		Str("base", cfg.PlacesBase).
		Int("workers", cfg.Workers).
		Int("batch", len(recs)).
		Msg("reconciler starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	lookup, err := places.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	resolver := app.NewPlaceIdentityResolver(repo, lookup, cache, int(cfg.CacheTTL.Seconds()))
	batch := app.NewRecommendationBatchResolver(resolver, cfg.Workers)
	geo := app.NewGeoIdentityReconciler(repo, cfg.Workers)

	results, counters := batch.ResolveBatch(ctx, recs)
	results = geo.ReconcileGeo(ctx, results)

	manual := 0
	for _, rec := range results {
		if rec.ExternalRef == domain.ManualEntryRequired {
			manual++
		}
	}
	log.Info().
		Int("total", counters.Total).
		Int("existing", counters.ExistingInDB).
		Int("new", counters.NewFromExternal).
		Int("invalid", counters.Invalid).
		Int("missing", counters.Missing).
		Int("needs_manual_entry", manual).
		Msg("reconciliation completed")
}
