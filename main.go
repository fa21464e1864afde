package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/claim-ledger/auth"
	"github.com/danielhkuo/claim-ledger/catalog"
	"github.com/danielhkuo/claim-ledger/cliparse"
	"github.com/danielhkuo/claim-ledger/dashboard"
	"github.com/danielhkuo/claim-ledger/db"
	"github.com/danielhkuo/claim-ledger/filestore"
	"github.com/danielhkuo/claim-ledger/middleware"
	"github.com/danielhkuo/claim-ledger/notify"
	"github.com/danielhkuo/claim-ledger/router"
	"github.com/danielhkuo/claim-ledger/store"
)

func main() {
	// A missing .env is normal in production
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	cat := catalog.Default()
	if cfg.CatalogFile != "" {
		cat, err = catalog.LoadFromFile(cfg.CatalogFile)
		if err != nil {
			slog.Error("catalog load failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Catalog loaded", "file", cfg.CatalogFile, "statuses", len(cat.Statuses))
	}

	ctx := context.Background()

	var files filestore.Store
	switch cfg.FileStore {
	case "s3":
		files, err = filestore.NewS3Store(ctx, filestore.S3Config{
			Bucket:   cfg.S3Bucket,
			Region:   cfg.S3Region,
			Endpoint: cfg.S3Endpoint,
			LinkBase: cfg.FolderLinkBase,
		})
		if err != nil {
			slog.Error("object store setup failed", "error", err)
			os.Exit(1)
		}
	default:
		slog.Warn("Using in-memory file store; attachments are lost on restart")
		files = filestore.NewMemoryStore()
	}

	var cache dashboard.Cache = dashboard.NewMemoryCache()
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			slog.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable, dashboard cache degrades to recompute", "error", err)
		}
		cache = dashboard.NewRedisCache(rdb)
	}

	mailer := notify.NewMailer(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})

	st := store.New(dbConn)
	mux := router.NewRouter(router.Deps{
		Store:     st,
		Config:    cfg,
		Files:     files,
		Mailer:    mailer,
		Dashboard: dashboard.NewService(st, cache, cat, cfg.DashboardCooldown),
		Catalog:   cat,
		Sessions:  auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL),
	})

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		// Wait for Ctrl-C signal, then let in-flight uploads finish
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "filestore", cfg.FileStore, "timezone", cfg.Timezone)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		return
	}
	<-stopped
	slog.Info("Server closed", "error", err)
}
