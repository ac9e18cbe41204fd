package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hospital-assistant/internal/tools"
)

// probeTimeout bounds the pre-stream health check so a hung backend cannot
// block a streaming session indefinitely.
const probeTimeout = 5 * time.Second

// OllamaClient talks to a local Ollama server over its native JSON API.
type OllamaClient struct {
	host        string
	chatModel   string
	streamModel string
	streamOpts  GenOptions
	httpClient  *http.Client
}

// NewOllamaClient constructs an Ollama-backed client.  streamOpts are sent
// verbatim on streamed requests; the chat path uses the backend defaults.
func NewOllamaClient(host, chatModel, streamModel string, streamOpts GenOptions) *OllamaClient {
	return &OllamaClient{
		host:        strings.TrimRight(host, "/"),
		chatModel:   chatModel,
		streamModel: streamModel,
		streamOpts:  streamOpts,
		httpClient:  &http.Client{},
	}
}

// Wire types for the /api/chat endpoint.

type chatRequest struct {
	Model    string      `json:"model"`
	Messages []Message   `json:"messages"`
	Stream   bool        `json:"stream"`
	Tools    []wireTool  `json:"tools,omitempty"`
	Options  *GenOptions `json:"options,omitempty"`
}

type wireTool struct {
	Type     string           `json:"type"`
	Function tools.Definition `json:"function"`
}

type wireToolCall struct {
	Function struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"function"`
}

type chatChunk struct {
	Message struct {
		Content   string         `json:"content"`
		ToolCalls []wireToolCall `json:"tool_calls"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Chat issues a single non-streamed completion with the tool catalog
// attached and returns the model's text or its first tool call.
func (c *OllamaClient) Chat(ctx context.Context, system, user string, catalog []tools.Definition) (*ChatResult, error) {
	reqBody := chatRequest{
		Model: c.chatModel,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
	}
	for _, d := range catalog {
		reqBody.Tools = append(reqBody.Tools, wireTool{Type: "function", Function: d})
	}

	resp, err := c.post(ctx, reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ollama chat: http %d", resp.StatusCode)
	}

	var chunk chatChunk
	if err := json.NewDecoder(resp.Body).Decode(&chunk); err != nil {
		return nil, fmt.Errorf("ollama chat: decode response: %w", err)
	}
	result := &ChatResult{Text: chunk.Message.Content}
	if len(chunk.Message.ToolCalls) > 0 {
		tc := chunk.Message.ToolCalls[0]
		result.ToolCall = &ToolCall{Name: tc.Function.Name, Arguments: tc.Function.Arguments}
	}
	return result, nil
}

// Stream probes the backend, then relays incremental content chunks to
// onToken until the backend reports the stream done.  The response body is
// closed on every exit path.
func (c *OllamaClient) Stream(ctx context.Context, system, user string, onToken func(string)) error {
	if err := c.probe(ctx); err != nil {
		return err
	}

	opts := c.streamOpts
	reqBody := chatRequest{
		Model: c.streamModel,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  true,
		Options: &opts,
	}
	resp, err := c.post(ctx, reqBody)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ollama stream: http %d", resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	for {
		var chunk chatChunk
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("ollama stream: decode chunk: %w", err)
		}
		if chunk.Message.Content != "" {
			onToken(chunk.Message.Content)
		}
		if chunk.Done {
			return nil
		}
	}
}

// probe checks /api/version with a bounded timeout.  Any non-2xx status,
// transport error, or timeout maps to ErrBackendUnavailable.
func (c *OllamaClient) probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.host+"/api/version", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: http %d", ErrBackendUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *OllamaClient) post(ctx context.Context, body chatRequest) (*http.Response, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/api/chat", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}
