package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/careops/hospital-admission/internal/config"
	"github.com/careops/hospital-admission/internal/db"
	"github.com/careops/hospital-admission/internal/dispatch"
	redisclient "github.com/careops/hospital-admission/internal/redis"
	"github.com/careops/hospital-admission/internal/store"
)

// The reaper releases ambulance claims whose workflow never finished, so a
// crashed session cannot hold the pool's only unit forever.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("dispatch-reaper starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running reaper in env=%s interval=%s dispatch_ttl=%s",
		cfg.Env, cfg.ReaperInterval, cfg.DispatchTTL)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connection error: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}()
	log.Println("connected to Redis")

	repo := store.NewPgRepository(pgPool)
	locker := redisclient.NewRedisPoolLocker(rdb, cfg.LockTTL)
	allocator := dispatch.NewAllocator(repo, locker)

	// Run once at startup
	runOnce(rootCtx, allocator, cfg.DispatchTTL)

	ticker := time.NewTicker(cfg.ReaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Println("shutdown signal received, stopping dispatch reaper")
			return
		case <-ticker.C:
			runOnce(rootCtx, allocator, cfg.DispatchTTL)
		}
	}
}

func runOnce(ctx context.Context, allocator *dispatch.Allocator, ttl time.Duration) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	released, err := allocator.ReleaseStale(runCtx, ttl)
	if err != nil {
		log.Printf("reaper run failed: %v", err)
		return
	}

	log.Printf("reaper run done released=%d duration=%s", released, time.Since(start))
}
