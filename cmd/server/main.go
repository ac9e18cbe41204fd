package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"hospital-assistant/internal/config"
	"hospital-assistant/internal/core"
	"hospital-assistant/internal/db"
	httpserver "hospital-assistant/internal/http"
	"hospital-assistant/internal/llm"
	"hospital-assistant/internal/retry"

	_ "github.com/lib/pq"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	cfg := config.FromEnv()
	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL must be set")
	}

	// Open database connection
	dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbConn.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	if err := db.Migrate(context.Background(), dbConn); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}
	repo := db.NewRepository(dbConn)
	notifier := db.NewNotifier(dbConn, cfg.DatabaseURL, cfg.NotifyChannel, log)
	store := &db.NotifyingStore{Repo: repo, Notifier: notifier}

	// Select the model gateway.  The local Ollama backend gets a recovery
	// hook that tries to relaunch the server process on connection failure.
	genOpts := llm.GenOptions{
		Temperature:   cfg.StreamTemperature,
		TopK:          cfg.StreamTopK,
		TopP:          cfg.StreamTopP,
		NumCtx:        cfg.StreamNumCtx,
		RepeatPenalty: cfg.StreamRepeatPenalty,
	}
	var client llm.Client
	var recovery retry.RecoveryHook
	switch cfg.Backend {
	case config.BackendOpenAI:
		client = llm.NewOpenAIClient(cfg.OpenAIKey, cfg.ChatModel, cfg.StreamModel, genOpts)
	default:
		client = llm.NewOllamaClient(cfg.OllamaHost, cfg.ChatModel, cfg.StreamModel, genOpts)
		recovery = retry.OllamaRelauncher(log)
	}

	assistant := core.NewAssistant(client, store, recovery, log)
	srv := httpserver.NewServer(assistant, repo, notifier, log)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("backend", cfg.Backend).Msg("listening")
	if err := http.ListenAndServe(addr, srv); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
