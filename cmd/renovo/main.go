package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vbonduro/renovo/internal/catalog"
	"github.com/vbonduro/renovo/internal/config"
	"github.com/vbonduro/renovo/internal/db"
	"github.com/vbonduro/renovo/internal/logging"
	"github.com/vbonduro/renovo/internal/notify"
	"github.com/vbonduro/renovo/internal/photostore"
	"github.com/vbonduro/renovo/internal/photostore/local"
	s3store "github.com/vbonduro/renovo/internal/photostore/s3"
	"github.com/vbonduro/renovo/internal/rooms"
	"github.com/vbonduro/renovo/internal/service"
	"github.com/vbonduro/renovo/internal/store"
	"github.com/vbonduro/renovo/internal/tagging"
	claudetagger "github.com/vbonduro/renovo/internal/tagging/claude"
	ollamatagger "github.com/vbonduro/renovo/internal/tagging/ollama"
	"github.com/vbonduro/renovo/internal/web"
)

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(serve())
}

// serve runs the server and returns the process exit status. Deferred
// cleanup runs before main exits.
func serve() int {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}
	policy, err := rooms.ParsePolicy(cfg.RoomMatchPolicy)
	if err != nil {
		return err
	}

	photoStg, err := newPhotoStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	hub := notify.NewHub()
	notifier := notify.Multi{notify.NewLogNotifier(logger), hub}
	if cfg.MQTTBroker != "" {
		mqtt, err := notify.ConnectMQTT(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopicPrefix, logger)
		if err != nil {
			// realtime push is optional; banners still reach SSE subscribers
			logger.Error("mqtt disabled", "error", err)
		} else {
			defer mqtt.Close()
			notifier = append(notifier, mqtt)
		}
	}

	propertyStore := store.NewPropertyStore(database)
	roomStore := store.NewRoomStore(database)
	projects := service.NewProjectService(propertyStore, store.NewProjectStore(database), roomStore, logger)
	sows := service.NewSOWService(projects, projects, notifier, cfg.SessionIdleTimeout, logger)
	assets := service.NewAssetService(projects, propertyStore, roomStore, store.NewPhotoStore(database),
		photoStg, newSuggester(cfg, logger), cat, policy, notifier, logger)

	go sows.RunPruner(ctx, pruneInterval(cfg.SessionIdleTimeout))

	server := web.NewServer(projects, sows, assets, cat, hub, cfg.AllowedOrigins, logger)
	httpServer := server.HTTPServer(cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func newPhotoStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (photostore.PhotoStore, error) {
	if cfg.PhotoBackend == "s3" {
		logger.Info("using s3 photo store", "bucket", cfg.S3Bucket, "region", cfg.S3Region)
		return s3store.NewS3PhotoStore(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Endpoint)
	}
	logger.Info("using local photo store", "path", cfg.PhotoPath)
	return local.NewLocalPhotoStore(cfg.PhotoPath, logger)
}

// newSuggester returns nil when tagging is disabled; uploads then carry only
// the room tag.
func newSuggester(cfg *config.Config, logger *slog.Logger) tagging.Suggester {
	switch cfg.TaggerBackend {
	case "claude":
		logger.Info("using Claude tagger", "model", cfg.ClaudeModel)
		return claudetagger.NewClaudeSuggester(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	case "ollama":
		logger.Info("using Ollama tagger", "model", cfg.OllamaModel)
		return ollamatagger.NewOllamaSuggester(cfg.OllamaHost, cfg.OllamaModel)
	default:
		logger.Info("photo tagging disabled")
		return nil
	}
}

func pruneInterval(idle time.Duration) time.Duration {
	if i := idle / 4; i > time.Minute {
		return i
	}
	return time.Minute
}
