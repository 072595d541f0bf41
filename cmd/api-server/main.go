package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/careops/hospital-admission/internal/admission"
	"github.com/careops/hospital-admission/internal/api"
	"github.com/careops/hospital-admission/internal/auth"
	"github.com/careops/hospital-admission/internal/config"
	"github.com/careops/hospital-admission/internal/db"
	"github.com/careops/hospital-admission/internal/dispatch"
	redisclient "github.com/careops/hospital-admission/internal/redis"
	"github.com/careops/hospital-admission/internal/store"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s", cfg.Env, cfg.HTTPPort)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatalf("postgres connection error: %v", err)
	}
	defer pgPool.Close()
	log.Println("connected to Postgres")

	// Connect Redis
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

	schemaCtx, cancelSchema := context.WithTimeout(rootCtx, 10*time.Second)
	err = repo.EnsureSchema(schemaCtx)
	cancelSchema()
	if err != nil {
		log.Fatalf("schema bootstrap error: %v", err)
	}

	locker := redisclient.NewRedisPoolLocker(rdb, cfg.LockTTL)
	allocator := dispatch.NewAllocator(repo, locker)
	authSvc := auth.NewService(repo, cfg.JWTSecret, cfg.SessionTTL)
	workflow := admission.NewService(repo, allocator, admission.NewSessionManager())

	router := api.NewRouter(api.RouterConfig{
		Auth:     authSvc,
		Workflow: workflow,
		PgPool:   pgPool,
		Redis:    rdb,
		Env:      cfg.Env,
		Version:  version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-rootCtx.Done()

	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}
