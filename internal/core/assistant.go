// Package core implements the conversation orchestrator that mediates
// between a hospitalized patient and the model backend: confirmation
// round-trips, tool-call dispatch, and the token-streaming path.
package core

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"hospital-assistant/internal/llm"
	"hospital-assistant/internal/retry"
	"hospital-assistant/internal/tools"
	"hospital-assistant/pkg"
)

// RequestStore is the persistence contract the orchestrator consumes.  The
// storage layer itself lives outside this core.
type RequestStore interface {
	CreateAssistanceRequest(ctx context.Context, req *pkg.AssistanceRequest) error
}

// Assistant orchestrates one conversation turn at a time.  It holds no
// mutable per-turn state: everything a turn needs arrives as parameters,
// and the one piece of cross-turn state (a pending request) round-trips
// through the caller.  Concurrent turns therefore cannot interfere.
type Assistant struct {
	llm         llm.Client
	store       RequestStore
	recovery    retry.RecoveryHook
	maxAttempts int
	log         zerolog.Logger

	// sleep overrides the retry backoff sleeper in tests.
	sleep func(ctx context.Context, d time.Duration)
}

// NewAssistant constructs the orchestrator.  recovery may be nil when the
// backend lifecycle is managed externally (and in tests).
func NewAssistant(client llm.Client, store RequestStore, recovery retry.RecoveryHook, log zerolog.Logger) *Assistant {
	return &Assistant{
		llm:         client,
		store:       store,
		recovery:    recovery,
		maxAttempts: retry.DefaultMaxAttempts,
		log:         log,
	}
}

// ProcessMessage handles one non-streamed conversation turn.  It never
// returns an error: every failure is converted to a user-safe apology so
// the chat stays available even when the backend or the store is down.
func (a *Assistant) ProcessMessage(ctx context.Context, userMessage string, conv pkg.ConversationContext) pkg.Reply {
	// A pending request short-circuits the model entirely: the turn is a
	// yes/no answer to "submit this request?".
	if conv.PendingRequest != nil {
		if containsToken(userMessage, "yes") {
			return a.submitPending(ctx, conv.PendingRequest)
		}
		if containsToken(userMessage, "no") {
			return pkg.Reply{Text: declineAck}
		}
		// Neither token matched: fall through and treat it as a fresh turn.
	}

	result, err := retry.Do(ctx, retry.Options{
		MaxAttempts: a.maxAttempts,
		Recovery:    a.recovery,
		Logger:      a.log,
		Sleep:       a.sleep,
	}, func(ctx context.Context) (*llm.ChatResult, error) {
		return a.llm.Chat(ctx, enhancedSystemPrompt(conv), userMessage, tools.Catalog())
	})
	if err != nil {
		a.log.Error().Err(err).Msg("model call failed")
		return pkg.Reply{Text: genericApology}
	}

	if result.ToolCall != nil {
		inv, err := tools.ParseInvocation(result.ToolCall.Name, result.ToolCall.Arguments)
		if err != nil {
			a.log.Error().Err(err).Str("tool", result.ToolCall.Name).Msg("tool call rejected")
			return pkg.Reply{Text: cannotProcessApology}
		}
		out := a.dispatch(ctx, inv, conv)
		if out == nil {
			return pkg.Reply{Text: cannotProcessApology}
		}
		return pkg.Reply{Text: out.Text, PendingRequest: out.PendingRequest}
	}

	return pkg.Reply{Text: result.Text}
}

// submitPending promotes a confirmed pending request to a persisted record
// with uppercased priority.
func (a *Assistant) submitPending(ctx context.Context, pending *pkg.PendingRequest) pkg.Reply {
	record := &pkg.AssistanceRequest{
		Priority:    strings.ToUpper(string(pending.Priority)),
		Description: pending.Description,
		Department:  pending.Department,
		Room:        pending.Room,
		Patient:     pending.Patient,
		Status:      pkg.StatusPending,
	}
	if err := a.store.CreateAssistanceRequest(ctx, record); err != nil {
		a.log.Error().Err(err).Msg("failed to submit confirmed request")
		return pkg.Reply{Text: storeApology}
	}
	return pkg.Reply{
		Text: "Perfect! I've submitted your request for assistance:\n\n" +
			requestSummary(pending.Priority, pending.Department, pending.Description, pending.Room) +
			"\n\nA nurse will be notified and will assist you soon.",
	}
}

// StreamMessage handles one streamed, text-only turn.  The token sequence
// always starts with StreamStart and ends with StreamEnd, on success,
// empty output, and failure alike.  On failure a human-readable error
// token precedes the end sentinel and the error is still returned, so UI
// code can render something before observing the failure.
func (a *Assistant) StreamMessage(ctx context.Context, userMessage string, onToken func(string)) error {
	if strings.TrimSpace(userMessage) == "" {
		// Rejected input still yields a bounded frame so callers always
		// see start...end.  No retry: validation cannot succeed later.
		onToken(StreamStart)
		onToken(streamErrorToken)
		onToken(StreamEnd)
		return errors.New("empty message provided")
	}

	_, err := retry.Do(ctx, retry.Options{
		MaxAttempts: a.maxAttempts,
		Recovery:    a.recovery,
		Logger:      a.log,
		Sleep:       a.sleep,
	}, func(ctx context.Context) (struct{}, error) {
		onToken(StreamStart)
		hasContent := false
		err := a.llm.Stream(ctx, SystemPrompt+streamFocus, userMessage, func(token string) {
			hasContent = true
			onToken(token)
		})
		if err != nil {
			a.log.Error().Err(err).Msg("streaming failed")
			onToken(streamErrorToken)
			onToken(StreamEnd)
			return struct{}{}, err
		}
		if !hasContent {
			onToken(emptyStreamFallback)
		}
		onToken(StreamEnd)
		return struct{}{}, nil
	})
	return err
}

// containsToken reports whether the message contains the given word after
// normalization (lowercased, split on non-letters).  Exact token matching
// keeps "yes" from firing inside unrelated words.
func containsToken(message, token string) bool {
	fields := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, f := range fields {
		if f == token {
			return true
		}
	}
	return false
}
