package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gearplanner/internal/config"
	"gearplanner/internal/db"
	"gearplanner/internal/logging"
	"gearplanner/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig   func() config.Config
	newLogger    func(env string) *zap.SugaredLogger
	connectRedis func(config.Config) *redis.Client
	notify       func(chan<- os.Signal, ...os.Signal)
	run          func(context.Context, config.Config, *redis.Client, *zap.SugaredLogger, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:   config.Load,
		newLogger:    logging.New,
		connectRedis: db.ConnectRedis,
		notify:       signal.Notify,
		run:          Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	log := deps.newLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	rdb := deps.connectRedis(cfg)
	if rdb == nil {
		log.Infow("redis not configured, catalog cache and cross-instance events disabled")
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, rdb, log, signals, nil); err != nil {
		log.Errorw("server exited with error", "error", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

const sweepInterval = time.Minute

// Run starts the HTTP server and the idle-session janitor, then waits for
// termination signals.
func Run(ctx context.Context, cfg config.Config, rdb *redis.Client, log *zap.SugaredLogger, signals <-chan os.Signal, listen ListenFunc) error {
	if log == nil {
		log = logging.Nop()
	}
	if cfg.IdentitySecret == "" {
		log.Warnw("IDENTITY_SECRET is not set; bearer tokens are not verified and sessions are keyed per token")
	}
	srv := server.NewServer(cfg, rdb, log)
	defer srv.Stream.Close()

	if listen == nil {
		listen = defaultListen
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	if cfg.SessionIdleTTL > 0 {
		go srv.Sessions.Run(janitorCtx, sweepInterval, cfg.SessionIdleTTL, func(removed int) {
			log.Infow("idle sessions removed", "count", removed)
		})
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
	srv.Stream.Close()
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
