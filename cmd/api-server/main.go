package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/montonitech/client-scheduling/internal/analytics"
	"github.com/montonitech/client-scheduling/internal/api"
	"github.com/montonitech/client-scheduling/internal/config"
	"github.com/montonitech/client-scheduling/internal/db"
	"github.com/montonitech/client-scheduling/internal/lock"
	"github.com/montonitech/client-scheduling/internal/postal"
	"github.com/montonitech/client-scheduling/internal/scheduling"
	"github.com/montonitech/client-scheduling/internal/store"
)

const version = "1.0.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	log.Printf("running in env=%s http_port=%s store=%s", cfg.Env, cfg.HTTPPort, cfg.StoreDriver)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		tree   store.Tree
		locker lock.Locker
		rdb    *redis.Client
	)
	switch cfg.StoreDriver {
	case "redis":
		rdb, err = store.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		log.Println("connected to Redis")

		tree = store.NewRedisTree(rdb)
		locker = lock.NewRedisLocker(rdb, cfg.LockTTL)
	case "memory":
		log.Println("using in-memory store, data will not survive restarts")
		tree = store.NewMemoryTree()
		locker = lock.NewLocalLocker()
	}

	var (
		sink   analytics.Sink = analytics.NopSink{}
		pgPool *pgxpool.Pool
	)
	if cfg.PostgresDSN != "" {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatalf("postgres connection error: %v", err)
		}
		defer pgPool.Close()
		log.Println("connected to Postgres, analytics enabled")
		sink = analytics.NewPgSink(pgPool)
	} else {
		log.Println("no POSTGRES_DSN, analytics disabled")
	}

	svc := scheduling.NewService(tree, locker, sink, scheduling.Config{
		InPersonCity:   cfg.InPersonCity,
		RegisterPolicy: cfg.RegisterPolicy,
	})

	router := api.NewRouter(api.RouterConfig{
		Service: svc,
		Postal:  postal.New(cfg.PostalBaseURL),
		Sink:    sink,
		Cfg:     cfg,
		Redis:   rdb,
		PgPool:  pgPool,
		Version: version,
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
		log.Printf("shutdown error: %v", err)
	}
}
