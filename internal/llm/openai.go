package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"hospital-assistant/internal/tools"
)

// OpenAIClient serves deployments that point the assistant at a hosted
// OpenAI-compatible endpoint instead of a local Ollama process.  It
// implements the same Client interface, including tool calling.
type OpenAIClient struct {
	client      *openai.Client
	chatModel   string
	streamModel string
	streamOpts  GenOptions
}

// NewOpenAIClient constructs an OpenAI-backed client.  streamOpts are
// applied to streamed requests where the API has an equivalent knob
// (temperature and top_p; top_k, num_ctx, and repeat_penalty have none).
func NewOpenAIClient(apiKey, chatModel, streamModel string, streamOpts GenOptions) *OpenAIClient {
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	if streamModel == "" {
		streamModel = chatModel
	}
	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		chatModel:   chatModel,
		streamModel: streamModel,
		streamOpts:  streamOpts,
	}
}

// Chat sends one completion request with the tool catalog attached and
// returns the assistant's text or its first tool call.
func (c *OpenAIClient) Chat(ctx context.Context, system, user string, catalog []tools.Definition) (*ChatResult, error) {
	if c.client == nil {
		return nil, errors.New("openai client not initialized")
	}

	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
	}
	for _, d := range catalog {
		req.Tools = append(req.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return &ChatResult{}, nil
	}
	msg := resp.Choices[0].Message
	result := &ChatResult{Text: msg.Content}
	if len(msg.ToolCalls) > 0 {
		tc := msg.ToolCalls[0]
		args := map[string]any{}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("decode tool-call arguments: %w", err)
		}
		result.ToolCall = &ToolCall{Name: tc.Function.Name, Arguments: args}
	}
	return result, nil
}

// Stream relays completion deltas to onToken until the server closes the
// stream.  Hosted endpoints have no version probe; availability surfaces
// as a request error instead.
func (c *OpenAIClient) Stream(ctx context.Context, system, user string, onToken func(string)) error {
	req := openai.ChatCompletionRequest{
		Model: c.streamModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Stream: true,
	}
	if c.streamOpts.Temperature != 0 {
		req.Temperature = float32(c.streamOpts.Temperature)
	}
	if c.streamOpts.TopP != 0 {
		req.TopP = float32(c.streamOpts.TopP)
	}
	stream, err := c.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(resp.Choices) > 0 && resp.Choices[0].Delta.Content != "" {
			onToken(resp.Choices[0].Delta.Content)
		}
	}
}
