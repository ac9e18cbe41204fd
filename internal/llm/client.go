package llm

import (
	"context"
	"errors"

	"hospital-assistant/internal/tools"
)

// ErrBackendUnavailable indicates the model backend failed its health
// probe; no stream was opened.
var ErrBackendUnavailable = errors.New("model backend is not available")

// Message is a minimal chat message used by the assistant core.
// Role must be one of: "system", "user", or "assistant".
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolCall is the model's structured request to invoke a named function
// with arguments, in lieu of free text.
type ToolCall struct {
	Name      string
	Arguments map[string]any
}

// ChatResult is the outcome of a single non-streamed completion.  ToolCall
// is set when the model elected to call a function; otherwise Text carries
// the plain reply.
type ChatResult struct {
	Text     string
	ToolCall *ToolCall
}

// GenOptions are generation parameters passed through to the backend on
// streamed requests.  They are configuration, not business logic.
type GenOptions struct {
	Temperature   float64 `json:"temperature,omitempty"`
	TopK          int     `json:"top_k,omitempty"`
	TopP          float64 `json:"top_p,omitempty"`
	NumCtx        int     `json:"num_ctx,omitempty"`
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
}

// Client defines the methods the assistant core requires from a model
// backend.  Chat issues one completion and surfaces at most one tool call;
// Stream relays token chunks to onToken until the backend reports the
// stream done.
type Client interface {
	Chat(ctx context.Context, system, user string, catalog []tools.Definition) (*ChatResult, error)
	Stream(ctx context.Context, system, user string, onToken func(string)) error
}
