// Package http exposes the assistant over thin transport adapters: a JSON
// message endpoint, a websocket token stream, and nurse-facing request
// feeds.  Rendering and authentication live in the client app.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"hospital-assistant/pkg"
)

// Assistant is the conversational core the handlers delegate to.
type Assistant interface {
	ProcessMessage(ctx context.Context, userMessage string, conv pkg.ConversationContext) pkg.Reply
	StreamMessage(ctx context.Context, userMessage string, onToken func(string)) error
}

// RequestLister lists assistance requests: open ones for the nurse
// dashboard, and a patient's recent history for the conversation context.
type RequestLister interface {
	ListOpenRequests(ctx context.Context) ([]pkg.AssistanceRequest, error)
	ListRequestsByPatient(ctx context.Context, patientID string, limit int) ([]pkg.AssistanceRequest, error)
}

// historyLimit caps how many past requests feed the previous-requests
// context line.
const historyLimit = 5

// RequestFeed delivers IDs of newly created requests.
type RequestFeed interface {
	Listen(ctx context.Context) (<-chan string, error)
}

// Server bundles together the dependencies required by HTTP handlers.  It
// implements http.Handler so it can be passed to http.ListenAndServe.
type Server struct {
	Assistant Assistant
	Requests  RequestLister
	Feed      RequestFeed
	Log       zerolog.Logger

	upgrader websocket.Upgrader
}

// NewServer constructs a Server.
func NewServer(assistant Assistant, requests RequestLister, feed RequestFeed, log zerolog.Logger) *Server {
	return &Server{
		Assistant: assistant,
		Requests:  requests,
		Feed:      feed,
		Log:       log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP dispatches incoming requests based on the URL path.  Minimal
// routing logic is implemented here to keep dependencies light.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/assistant/message" && r.Method == http.MethodPost:
		s.handleMessage(w, r)
	case r.URL.Path == "/api/assistant/stream" && r.Method == http.MethodGet:
		s.handleStream(w, r)
	case r.URL.Path == "/api/requests" && r.Method == http.MethodGet:
		s.handleListRequests(w, r)
	case r.URL.Path == "/api/requests/stream" && r.Method == http.MethodGet:
		s.handleRequestFeed(w, r)
	case r.URL.Path == "/healthz" && r.Method == http.MethodGet:
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	default:
		http.NotFound(w, r)
	}
}

// messageRequest is the body of POST /api/assistant/message.
type messageRequest struct {
	Message string                  `json:"message"`
	Context pkg.ConversationContext `json:"context"`
}

// handleMessage runs one non-streamed conversation turn.  The reply always
// has status 200: conversational failures surface as apology text, and the
// pending request (if any) rides along for the caller to echo back.
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "empty message", http.StatusBadRequest)
		return
	}
	// A client-supplied previous-requests line wins; otherwise build one
	// from the patient's stored history.  Failing to load history degrades
	// to an empty line, not a failed turn.
	if req.Context.PreviousRequests == "" && req.Context.PatientID != "" {
		history, err := s.Requests.ListRequestsByPatient(r.Context(), req.Context.PatientID, historyLimit)
		if err != nil {
			s.Log.Warn().Err(err).Str("patient", req.Context.PatientID).Msg("could not load request history")
		} else {
			req.Context.PreviousRequests = previousRequestsLine(history)
		}
	}
	reply := s.Assistant.ProcessMessage(r.Context(), req.Message, req.Context)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(reply)
}

// previousRequestsLine summarizes past requests for the system prompt,
// e.g. "HIGH: pain medication (Emergency); LOW: extra pillow (Outpatient)".
func previousRequestsLine(history []pkg.AssistanceRequest) string {
	parts := make([]string, 0, len(history))
	for _, req := range history {
		parts = append(parts, fmt.Sprintf("%s: %s (%s)", req.Priority, req.Description, req.Department))
	}
	return strings.Join(parts, "; ")
}

// handleStream upgrades to a websocket and relays token chunks.  Each text
// frame from the client is one user message; each emitted token becomes
// one text frame back, framed by the stream sentinels.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		streamErr := s.Assistant.StreamMessage(r.Context(), string(payload), func(token string) {
			if werr := conn.WriteMessage(websocket.TextMessage, []byte(token)); werr != nil {
				s.Log.Warn().Err(werr).Msg("websocket write failed")
			}
		})
		if streamErr != nil {
			// The error token and end sentinel were already sent; the
			// session stays open for the next message.
			s.Log.Error().Err(streamErr).Msg("stream turn failed")
		}
	}
}

// handleListRequests returns open assistance requests as JSON.
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := s.Requests.ListOpenRequests(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if requests == nil {
		requests = []pkg.AssistanceRequest{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(requests)
}

// handleRequestFeed streams newly created request IDs over SSE until the
// client disconnects.
func (s *Server) handleRequestFeed(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ids, err := s.Feed.Listen(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case id, open := <-ids:
			if !open {
				return
			}
			payload, _ := json.Marshal(map[string]string{
				"type":       "request_created",
				"request_id": id,
			})
			if _, err := io.WriteString(w, "data: "+string(payload)+"\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
