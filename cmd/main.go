package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"textrpg/server/internal/config"
	"textrpg/server/internal/engine"
	"textrpg/server/internal/interfaces"
	"textrpg/server/internal/logger"
	"textrpg/server/internal/session"
	"textrpg/server/internal/storage"
	"textrpg/server/internal/story"
	"textrpg/server/internal/web"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	configPath := os.Getenv("TEXTRPG_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Encoding:   cfg.Logging.Encoding,
		OutputPath: cfg.Logging.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize save store
	store, err := storage.Open(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open save store", zap.Error(err))
	}
	defer store.Close()

	hub := web.NewStateHub(cfg.Hub, appLogger)
	go hub.Run(ctx)

	// Load the story once; a failure leaves the game routes answering 503
	loader := story.NewLoader(appLogger,
		story.WithStrict(cfg.Story.Strict),
		story.WithHTTPClient(&http.Client{Timeout: cfg.Story.LoadTimeout}),
	)
	sess, loadErr := newSession(ctx, cfg, loader, store, hub, appLogger)
	if loadErr != nil {
		appLogger.Error("Error loading game",
			zap.String("source", cfg.Story.Source),
			zap.Error(loadErr))
	}

	r := web.NewRouter(web.Deps{
		Session: sess,
		Hub:     hub,
		LoadErr: loadErr,
		Logger:  appLogger,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in background
	go func() {
		appLogger.Info("Server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	appLogger.Info("Server shutting down...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}

	appLogger.Info("Server stopped")
}

// newSession loads the story and builds the single game session around it
func newSession(
	ctx context.Context,
	cfg *config.Config,
	source interfaces.StorySource,
	store interfaces.SaveStore,
	hub *web.StateHub,
	appLogger *zap.Logger,
) (*session.Session, error) {
	if cfg.Story.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Story.LoadTimeout)
		defer cancel()
	}

	graph, err := source.Load(ctx, cfg.Story.Source)
	if err != nil {
		return nil, err
	}

	interp := engine.NewStoryEngine(graph, appLogger)
	return session.New(interp, store,
		session.WithSlot(cfg.Persistence.Slot),
		session.WithObserver(hub),
		session.WithLogger(appLogger),
	), nil
}
