// Package config centralizes the service's environment-driven settings in
// one explicit struct, replacing scattered hardcoded constants.
package config

import (
	"os"
	"strconv"
)

// Backend kinds for the model gateway.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

// Config holds everything the server needs at startup.
type Config struct {
	// Model backend selection and addressing.
	Backend     string
	OllamaHost  string
	ChatModel   string
	StreamModel string
	OpenAIKey   string

	// Generation options passed through on streamed requests.
	StreamTemperature   float64
	StreamTopK          int
	StreamTopP          float64
	StreamNumCtx        int
	StreamRepeatPenalty float64

	// Persistence and transport.
	DatabaseURL   string
	NotifyChannel string
	Port          string
}

// FromEnv loads configuration from the environment, falling back to the
// defaults the assistant ships with: a local Ollama server, mistral for
// tool-calling turns, and nemotron-mini for interactive streaming.
func FromEnv() Config {
	return Config{
		Backend:     getenv("LLM_BACKEND", BackendOllama),
		OllamaHost:  getenv("OLLAMA_HOST", "http://localhost:11434"),
		ChatModel:   getenv("LLM_CHAT_MODEL", "mistral"),
		StreamModel: getenv("LLM_STREAM_MODEL", "nemotron-mini"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),

		StreamTemperature:   getenvFloat("LLM_STREAM_TEMPERATURE", 0.7),
		StreamTopK:          getenvInt("LLM_STREAM_TOP_K", 40),
		StreamTopP:          getenvFloat("LLM_STREAM_TOP_P", 0.9),
		StreamNumCtx:        getenvInt("LLM_STREAM_NUM_CTX", 512),
		StreamRepeatPenalty: getenvFloat("LLM_STREAM_REPEAT_PENALTY", 1.1),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		NotifyChannel: getenv("POSTGRES_NOTIFY_CHANNEL", "assistance_requests"),
		Port:          getenv("PORT", "8080"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
