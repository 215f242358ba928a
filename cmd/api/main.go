package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-friendbook/internal/config"
	"backend-friendbook/internal/db"
	"backend-friendbook/internal/logger"
	"backend-friendbook/internal/media"
	"backend-friendbook/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	migrate         func(context.Context, *pgxpool.Pool) error
	connectRedis    func(config.Config) *redis.Client
	connectMinio    func(context.Context, config.Config) (media.Blobs, error)
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, server.Deps, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		migrate:         db.Migrate,
		connectRedis:    db.ConnectRedis,
		connectMinio:    connectMinio,
		notify:          signal.Notify,
		run:             Run,
	}
}

// connectMinio returns nil blobs when no endpoint is configured.
func connectMinio(ctx context.Context, cfg config.Config) (media.Blobs, error) {
	if cfg.MinioEndpoint == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return media.NewMinioStore(ctx, media.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	log := logger.New(cfg.LogLevel)
	ctx := context.Background()

	var pg *pgxpool.Pool
	if cfg.StoreDriver == config.DriverPostgres {
		var err error
		pg, err = deps.connectPostgres(cfg)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
		} else if err := deps.migrate(ctx, pg); err != nil {
			log.Error("migrations failed", "error", err)
		}
	}

	rdb := deps.connectRedis(cfg)

	blobs, err := deps.connectMinio(ctx, cfg)
	if err != nil {
		log.Error("minio connection failed, using in-memory media", "error", err)
		blobs = nil
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(ctx, cfg, server.Deps{DB: pg, Redis: rdb, Blobs: blobs, Log: log}, signals, nil); err != nil {
		log.Error("server exited with error", "error", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, deps server.Deps, signals <-chan os.Signal, listen ListenFunc) error {
	srv := server.NewServer(cfg, deps)
	defer srv.Close()

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if deps.DB != nil {
		deps.DB.Close()
	}
	if deps.Redis != nil {
		_ = deps.Redis.Close()
	}
	return nil
}
