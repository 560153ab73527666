package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	config "github.com/Gowthamnitro5/video-transcriber/config/transcriber"
	"github.com/Gowthamnitro5/video-transcriber/pkg/gen"
	"github.com/Gowthamnitro5/video-transcriber/pkg/logger"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/engine"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/media"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/server"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/storage"
	"github.com/Gowthamnitro5/video-transcriber/services/transcriber/usecase"
)

func main() {
	log := logger.Default()

	log = logger.New(logger.Config{
		Level:      slog.LevelDebug,
		Output:     os.Stderr,
		AddSource:  true,
		JSONFormat: false,
	})

	cfg := config.MustLoad()

	ctx := logger.WithContext(context.Background(), log)

	rootCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("failed to run()", slog.String("error", err.Error()))
		return
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	stg, err := storage.New(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	uploadDir, _ := filepath.Abs(cfg.UploadDir)
	log.Info("upload root ready", slog.String("dir", uploadDir))

	eng, err := buildEngine(cfg)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}
	log.Info("transcription engine ready", slog.String("backend", cfg.Engine.Backend))

	usc := usecase.New(stg, eng, media.NewFFmpeg(), gen.JobID(), cfg.ScratchDir)
	h := server.NewHandler(usc, cfg.MaxUploadBytes)

	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", h.HealthHandler)
	router.Post("/transcribe", h.TranscribeHandler)
	router.Get("/download/{filename}", h.DownloadHandler)
	router.Get("/supported-languages", h.LanguagesHandler)

	// no read/write timeouts: uploads run to 500MB and engine calls block
	// for as long as the recording is
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     router,
		IdleTimeout: 60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("transcriber service started", slog.String("address", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server has closed: %w", err)
	case <-ctx.Done():
		log.Info("closing http server due to context cancellation")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func buildEngine(cfg *config.Config) (engine.Engine, error) {
	switch cfg.Engine.Backend {
	case "openai":
		if cfg.Engine.OpenAI.APIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai engine")
		}
		return engine.NewOpenAI(cfg.Engine.OpenAI.APIKey, cfg.Engine.OpenAI.BaseURL, cfg.Engine.OpenAI.Model), nil
	case "local":
		return engine.NewLocal(cfg.Engine.Local.Python, cfg.Engine.Local.Model, cfg.Engine.Local.Device, cfg.ScratchDir), nil
	default:
		return nil, fmt.Errorf("unknown engine backend %q", cfg.Engine.Backend)
	}
}
