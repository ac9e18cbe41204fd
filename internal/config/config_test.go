package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, BackendOllama, cfg.Backend)
	assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
	assert.Equal(t, "mistral", cfg.ChatModel)
	assert.Equal(t, "nemotron-mini", cfg.StreamModel)
	assert.InDelta(t, 0.7, cfg.StreamTemperature, 1e-9)
	assert.Equal(t, 40, cfg.StreamTopK)
	assert.InDelta(t, 0.9, cfg.StreamTopP, 1e-9)
	assert.Equal(t, 512, cfg.StreamNumCtx)
	assert.InDelta(t, 1.1, cfg.StreamRepeatPenalty, 1e-9)
	assert.Equal(t, "assistance_requests", cfg.NotifyChannel)
	assert.Equal(t, "8080", cfg.Port)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LLM_BACKEND", BackendOpenAI)
	t.Setenv("LLM_CHAT_MODEL", "gpt-4o-mini")
	t.Setenv("LLM_STREAM_NUM_CTX", "2048")
	t.Setenv("LLM_STREAM_TEMPERATURE", "0.2")
	t.Setenv("PORT", "9090")

	cfg := FromEnv()
	assert.Equal(t, BackendOpenAI, cfg.Backend)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, 2048, cfg.StreamNumCtx)
	assert.InDelta(t, 0.2, cfg.StreamTemperature, 1e-9)
	assert.Equal(t, "9090", cfg.Port)
}

func TestFromEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("LLM_STREAM_TOP_K", "many")
	cfg := FromEnv()
	assert.Equal(t, 40, cfg.StreamTopK)
}
