package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/deepsift/deepsift/internal/bot"
	"github.com/deepsift/deepsift/internal/classify"
	"github.com/deepsift/deepsift/internal/config"
	"github.com/deepsift/deepsift/internal/db"
	"github.com/deepsift/deepsift/internal/detector"
	"github.com/deepsift/deepsift/internal/handlers"
	"github.com/deepsift/deepsift/internal/history"
	"github.com/deepsift/deepsift/internal/logger"
	"github.com/deepsift/deepsift/internal/reconcile"
	"github.com/deepsift/deepsift/internal/server"
	"github.com/deepsift/deepsift/internal/session"
	"github.com/deepsift/deepsift/internal/storage"
	"github.com/deepsift/deepsift/internal/whatsapp"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,
			provideHistoryService,
			provideClassifier,
			provideSessionStore,
			provideStorageProvider,
			provideWhatsAppClient,
			provideVideoDetector,
			provideImageDetector,
			provideTextDetector,
			providePipeline,
			provideBotHandler,
			provideSweeper,
			provideServerHandler(provideWebhookHandler),
			provideServerHandler(provideUploadHandler),
			provideServerHandler(handlers.NewHistoryHandler),
			provideServerHandler(handlers.NewSessionHandler),
			provideServerHandler(handlers.NewPingHandler),
			provideServer,
		),
		fx.Invoke(
			startSweeper,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.Postgres); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideHistoryService(log *slog.Logger, conn *pgxpool.Pool) *history.Service {
	return history.NewService(log, conn)
}

func provideClassifier(cfg config.Config) *classify.Classifier {
	return classify.New(classify.Buckets{
		Image:    cfg.Storage.ImageBucket,
		Video:    cfg.Storage.VideoBucket,
		Document: cfg.Storage.DocumentBucket,
	})
}

func provideSessionStore() session.Store {
	return session.NewMemoryStore()
}

func provideStorageProvider(log *slog.Logger, cfg config.Config) storage.Provider {
	return storage.NewSupabaseProvider(log, cfg.Storage.SupabaseURL, cfg.Storage.ServiceKey)
}

func provideWhatsAppClient(log *slog.Logger, cfg config.Config) *whatsapp.Client {
	return whatsapp.NewClient(log, cfg.WhatsApp.GraphAPIBase, cfg.WhatsApp.AccessToken, cfg.WhatsApp.PhoneNumberID)
}

func provideVideoDetector(log *slog.Logger, cfg config.Config) bot.VideoDetector {
	return detector.NewVideoClient(log, cfg.Detectors.VideoURL, cfg.Detectors.VideoAPIKey,
		time.Duration(cfg.Detectors.VideoTimeoutSec)*time.Second)
}

func provideImageDetector(log *slog.Logger, cfg config.Config) bot.ImageDetector {
	return detector.NewImageClient(log, cfg.Detectors.ImageURL,
		time.Duration(cfg.Detectors.ImageTimeoutSec)*time.Second)
}

func provideTextDetector(log *slog.Logger, cfg config.Config) bot.TextDetector {
	return detector.NewTextClient(log, cfg.Detectors.TextURL,
		time.Duration(cfg.Detectors.TextTimeoutSec)*time.Second)
}

func providePipeline(log *slog.Logger, wa *whatsapp.Client, uploader storage.Provider, records *history.Service, classifier *classify.Classifier, video bot.VideoDetector, image bot.ImageDetector, text bot.TextDetector) *bot.Pipeline {
	return bot.NewPipeline(log, wa, uploader, records, classifier, video, image, text)
}

func provideBotHandler(log *slog.Logger, sessions session.Store, pipeline *bot.Pipeline, classifier *classify.Classifier, text bot.TextDetector) *bot.Handler {
	return bot.NewHandler(log, sessions, pipeline, classifier, text)
}

func provideSweeper(log *slog.Logger, cfg config.Config, records *history.Service) *reconcile.Sweeper {
	return reconcile.NewSweeper(log, records, cfg.Reconcile.Schedule,
		time.Duration(cfg.Reconcile.StalePendingMin)*time.Minute)
}

func provideWebhookHandler(log *slog.Logger, cfg config.Config, wa *whatsapp.Client, processor *bot.Handler) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, cfg.WhatsApp.VerifyToken, wa, processor)
}

func provideUploadHandler(log *slog.Logger, uploader storage.Provider, records *history.Service, classifier *classify.Classifier) *handlers.UploadHandler {
	return handlers.NewUploadHandler(log, uploader, records, classifier)
}

type serverParams struct {
	fx.In
	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(
		params.Logger,
		params.Config.Server.Addr,
		params.Config.Auth.JWTSecret,
		params.Config.Server.MaxUploadBytes,
		params.ServerHandlers,
	)
}

func startSweeper(lc fx.Lifecycle, cfg config.Config, sweeper *reconcile.Sweeper) {
	if !cfg.Reconcile.Enabled {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return sweeper.Start() },
		OnStop:  func(ctx context.Context) error { sweeper.Stop(); return nil },
	})
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
