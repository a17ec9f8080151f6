package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"github.com/justinas/alice"
	"golang.org/x/sync/errgroup"

	"ai-tryon-studio/internal/config"
	"ai-tryon-studio/internal/gemini"
	"ai-tryon-studio/internal/handlers"
	"ai-tryon-studio/internal/httpclient"
	"ai-tryon-studio/internal/imaging"
	"ai-tryon-studio/internal/wizard"
)

//go:embed static/*
var staticFS embed.FS

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	gem := gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		Model:      cfg.GeminiModel,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if !gem.Configured() {
		logger.Warn("GEMINI_API_KEY is not set, generation will fail until it is configured")
	}

	fetcher := imaging.NewFetcher(imaging.FetcherOptions{
		HTTPClient: httpClient,
		Logger:     logger,
	})

	wizards := wizard.NewStore(func(string) *wizard.Machine {
		return wizard.New(wizard.Options{
			Resolver:     fetcher,
			Generator:    gem,
			AdvanceDelay: cfg.AdvanceDelay,
			Logger:       logger,
		})
	})

	sessions := scs.New()
	sessions.Lifetime = 24 * time.Hour
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode

	h := handlers.New(handlers.Options{
		Wizards:        wizards,
		Sessions:       sessions,
		Configured:     gem.Configured(),
		MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		Logger:         logger,
	})

	router := h.Router()

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	router.PathPrefix("/").Handler(http.FileServer(http.FS(staticSub)))

	chain := alice.New(h.RecoverPanic, h.LogRequest, sessions.LoadAndSave)

	srv := &http.Server{
		Addr:              cfg.WebAddr,
		Handler:           chain.Then(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       90 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("web started", "addr", cfg.WebAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
