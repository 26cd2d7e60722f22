// Command settingsd serves the chatbot settings API: per-bot settings
// documents stored as JSON files plus the static bot catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/webchatbot/panel/internal/config"
	"github.com/webchatbot/panel/internal/handlers"
	"github.com/webchatbot/panel/internal/logger"
	"github.com/webchatbot/panel/internal/server"
	"github.com/webchatbot/panel/internal/store"
	"github.com/webchatbot/panel/internal/version"
)

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv(config.EnvConfigPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(lc fx.Lifecycle, cfg config.Config) *slog.Logger {
	if cfg.Log.File == "" {
		logger.Init(cfg.Log.Level, cfg.Log.Format)
		return logger.L
	}
	closer := logger.InitWithFile(cfg.Log.Level, cfg.Log.Format, logger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closeLog(closer)
		},
	})
	return logger.L
}

func closeLog(c io.Closer) error {
	if err := c.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	return nil
}

func provideSettingsStore(log *slog.Logger, cfg config.Config) *store.FileStore {
	return store.NewFileStore(log, cfg.Server.DataDir)
}

func provideCatalogHandler(log *slog.Logger, cfg config.Config) *handlers.CatalogHandler {
	return handlers.NewCatalogHandler(log, cfg.Server.CatalogPath)
}

func options() []fx.Option {
	return []fx.Option{
		fx.Provide(
			provideConfig,
			provideLogger,

			fx.Annotate(provideSettingsStore, fx.As(new(handlers.SettingsStore))),

			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(handlers.NewSettingsHandler),
			provideServerHandler(provideCatalogHandler),

			provideServer,
		),
		fx.Invoke(
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	}
}

func main() {
	fx.New(options()...).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

type serverParams struct {
	fx.In

	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.Config.Server.AllowedOrigins, params.ServerHandlers...)
}

func startServer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	srv *server.Server,
	shutdowner fx.Shutdowner,
	cfg config.Config,
) {
	logger.Info("starting settings server",
		slog.String("version", version.GetInfo()),
		slog.String("data_dir", cfg.Server.DataDir),
		slog.String("catalog", cfg.Server.CatalogPath),
	)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := os.MkdirAll(cfg.Server.DataDir, 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
