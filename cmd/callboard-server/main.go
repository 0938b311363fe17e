package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/calltime/callboard/internal/callboard/service"
	"github.com/calltime/callboard/internal/callboard/store"
	filestore "github.com/calltime/callboard/internal/callboard/store/file"
	memorystore "github.com/calltime/callboard/internal/callboard/store/memory"
	redisstore "github.com/calltime/callboard/internal/callboard/store/redis"
	sqlitestore "github.com/calltime/callboard/internal/callboard/store/sqlite"
	"github.com/calltime/callboard/internal/config"
	"github.com/calltime/callboard/internal/db"
	"github.com/calltime/callboard/internal/httpapi"
)

func main() {
	// .env is optional; deployments set real environment variables.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "callboard-server ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		docs  store.DocumentStore
		audit store.AccessLog
	)

	switch cfg.StoreBackend {
	case "sqlite":
		conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
		if err != nil {
			logger.Fatalf("open sqlite: %v", err)
		}
		defer conn.Close()

		writer := db.NewWriter(conn)
		defer writer.Close()

		if cfg.Env == "dev" {
			if err := db.SeedDev(ctx, conn); err != nil {
				logger.Fatalf("seed dev: %v", err)
			}
		}

		docs = sqlitestore.NewDocumentStore(conn, writer)
		audit = sqlitestore.NewAccessLog(conn, writer)

	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Fatalf("redis ping: %v", err)
		}
		cancel()

		docs = redisstore.NewDocumentStore(client, cfg.RedisKey)
		// Redis holds only the document; the audit log stays on disk.
		audit = filestore.NewAccessLog(cfg.AccessLogPath)

	case "memory":
		docs = memorystore.NewDocumentStore()
		audit = memorystore.NewAccessLog()

	default: // file
		docs = filestore.NewDocumentStore(cfg.DataPath)
		audit = filestore.NewAccessLog(cfg.AccessLogPath)
	}

	statusSvc := service.NewStatusService(docs, audit, logger)

	var metrics *httpapi.Metrics
	if cfg.MetricsEnabled {
		metrics = httpapi.NewMetrics()
	}

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:        logger,
		Addr:          cfg.HTTPAddr,
		StatusService: statusSvc,
		Metrics:       metrics,
		WriteToken:    cfg.WriteToken,
	})

	go func() {
		logger.Printf("listening on %s (backend=%s)", cfg.HTTPAddr, cfg.StoreBackend)
		if err := srv.Start(); err != nil {
			logger.Printf("server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
