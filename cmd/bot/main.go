package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ai-tryon-studio/internal/bot"
	"ai-tryon-studio/internal/config"
	"ai-tryon-studio/internal/gemini"
	"ai-tryon-studio/internal/httpclient"
	"ai-tryon-studio/internal/imaging"
	"ai-tryon-studio/internal/telegram"
	"ai-tryon-studio/internal/wizard"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := newLogger(cfg)

	if cfg.TelegramToken == "" {
		logger.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	tg, err := telegram.New(telegram.Options{
		Token:      cfg.TelegramToken,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})
	if err != nil {
		logger.Error("telegram init failed", "err", err)
		os.Exit(1)
	}

	gem := gemini.New(gemini.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		APIVersion: cfg.GeminiAPIVersion,
		Model:      cfg.GeminiModel,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	if !gem.Configured() {
		logger.Warn("GEMINI_API_KEY is not set, generation commands will fail until it is configured")
	}

	fetcher := imaging.NewFetcher(imaging.FetcherOptions{
		HTTPClient: httpClient,
		Logger:     logger,
	})

	handler := bot.New(bot.Options{
		Telegram: tg,
		Logger:   logger,
	})

	wizards := wizard.NewStore(func(key string) *wizard.Machine {
		return wizard.New(wizard.Options{
			Resolver:     fetcher,
			Generator:    gem,
			AdvanceDelay: cfg.AdvanceDelay,
			OnChange:     handler.NotifyFunc(mustChatID(key)),
			Logger:       logger,
		})
	})
	handler.SetWizards(wizards)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("bot started", "username", tg.Username())

	updates := tg.Updates(telegram.UpdatesOptions{
		Timeout: 30 * time.Second,
	})
	defer tg.StopUpdates()

	sem := make(chan struct{}, cfg.MaxConcurrent)
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case update, ok := <-updates:
			if !ok {
				logger.Info("updates channel closed")
				return
			}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}

			go func(update telegram.Update) {
				defer func() { <-sem }()

				reqCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout)
				defer cancel()

				if err := handler.HandleUpdate(reqCtx, update); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("handle update failed", "err", err)
				}
			}(update)
		}
	}
}

func mustChatID(key string) int64 {
	id, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		panic("wizard store key is not a chat id: " + key)
	}
	return id
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
