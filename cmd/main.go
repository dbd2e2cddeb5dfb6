// ingest-service — pulls job postings from VC firm job boards on a
// schedule or on demand, normalizes them, and persists the deduplicated
// union.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"venturejobs/ingest-service/internal/board"
	"venturejobs/ingest-service/internal/board/consider"
	"venturejobs/ingest-service/internal/board/getro"
	"venturejobs/ingest-service/internal/catalog"
	"venturejobs/ingest-service/internal/config"
	"venturejobs/ingest-service/internal/db"
	"venturejobs/ingest-service/internal/ingest"
	"venturejobs/ingest-service/internal/model"
	"venturejobs/ingest-service/internal/progress"
	"venturejobs/ingest-service/internal/scheduler"
	"venturejobs/ingest-service/internal/server"
	"venturejobs/ingest-service/internal/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] Config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[main] Postgres: %v", err)
	}
	defer pool.Close()

	pg, err := store.New(ctx, pool)
	if err != nil {
		log.Fatalf("[main] Store init: %v", err)
	}

	// The seen-key cache is optional: no Redis just means every duplicate
	// check goes to Postgres.
	var cache ingest.SeenCache
	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("[main] Redis unavailable: %v — running without the duplicate cache", err)
		} else {
			defer rdb.Close()
			cache = store.NewSeenCache(rdb)
		}
	}

	client := board.NewClient(cfg.HTTPTimeout)
	registry := board.Registry{
		model.PlatformConsider: consider.New(client),
		model.PlatformGetro:    getro.New(client, pg),
	}

	broadcaster := progress.NewBroadcaster()
	defer broadcaster.Close()

	orchestrator := ingest.New(catalog.Firms, registry, pg, pg, broadcaster, cache)

	sched := scheduler.New(pg, func(ctx context.Context) {
		orchestrator.RunAutomated(ctx)
	})
	sched.Initialize(ctx)
	defer sched.Stop()

	srv := server.New(pg, orchestrator, sched, broadcaster, cfg.CronSecret)

	addr := ":" + cfg.Port
	log.Printf("[main] Listening on %s", addr)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		log.Fatalf("[main] Server: %v", err)
	}
}
