package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-assistant/pkg"
)

type fakeAssistant struct {
	lastMessage string
	lastContext pkg.ConversationContext
	reply       pkg.Reply
	tokens      []string
	streamErr   error
}

func (f *fakeAssistant) ProcessMessage(_ context.Context, msg string, conv pkg.ConversationContext) pkg.Reply {
	f.lastMessage = msg
	f.lastContext = conv
	return f.reply
}

func (f *fakeAssistant) StreamMessage(_ context.Context, _ string, onToken func(string)) error {
	for _, tok := range f.tokens {
		onToken(tok)
	}
	return f.streamErr
}

type fakeLister struct {
	requests []pkg.AssistanceRequest

	history     []pkg.AssistanceRequest
	historyErr  error
	lastPatient string
	lastLimit   int
}

func (f *fakeLister) ListOpenRequests(context.Context) ([]pkg.AssistanceRequest, error) {
	return f.requests, nil
}

func (f *fakeLister) ListRequestsByPatient(_ context.Context, patientID string, limit int) ([]pkg.AssistanceRequest, error) {
	f.lastPatient = patientID
	f.lastLimit = limit
	return f.history, f.historyErr
}

type fakeFeed struct {
	ids chan string
}

func (f *fakeFeed) Listen(context.Context) (<-chan string, error) {
	return f.ids, nil
}

func newTestServer(assistant *fakeAssistant) *Server {
	return NewServer(assistant, &fakeLister{}, &fakeFeed{ids: make(chan string)}, zerolog.Nop())
}

func TestHandleMessage(t *testing.T) {
	assistant := &fakeAssistant{reply: pkg.Reply{
		Text: "Would you like me to submit this request?",
		PendingRequest: &pkg.PendingRequest{
			Priority:   pkg.PriorityHigh,
			Department: "Emergency",
			Room:       "204",
			Status:     pkg.StatusPending,
		},
	}}
	srv := newTestServer(assistant)

	body, _ := json.Marshal(map[string]any{
		"message": "I'm in a lot of pain",
		"context": pkg.ConversationContext{Room: "204", PatientID: "p-1"},
	})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/assistant/message", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "I'm in a lot of pain", assistant.lastMessage)
	assert.Equal(t, "204", assistant.lastContext.Room)

	var reply pkg.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	require.NotNil(t, reply.PendingRequest)
	assert.Equal(t, pkg.PriorityHigh, reply.PendingRequest.Priority)
}

func TestHandleMessageRejectsBadInput(t *testing.T) {
	srv := newTestServer(&fakeAssistant{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/assistant/message", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/assistant/message", strings.NewReader(`{"message":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMessageBuildsPreviousRequestsFromHistory(t *testing.T) {
	assistant := &fakeAssistant{}
	lister := &fakeLister{history: []pkg.AssistanceRequest{
		{Priority: "HIGH", Description: "pain medication", Department: "Emergency"},
		{Priority: "LOW", Description: "extra pillow", Department: "Outpatient"},
	}}
	srv := NewServer(assistant, lister, &fakeFeed{ids: make(chan string)}, zerolog.Nop())

	body, _ := json.Marshal(map[string]any{
		"message": "how are my requests doing?",
		"context": pkg.ConversationContext{PatientID: "p-1"},
	})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/assistant/message", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "p-1", lister.lastPatient)
	assert.Equal(t, historyLimit, lister.lastLimit)
	assert.Equal(t,
		"HIGH: pain medication (Emergency); LOW: extra pillow (Outpatient)",
		assistant.lastContext.PreviousRequests)
}

func TestHandleMessageKeepsClientSuppliedHistory(t *testing.T) {
	assistant := &fakeAssistant{}
	lister := &fakeLister{history: []pkg.AssistanceRequest{
		{Priority: "HIGH", Description: "pain medication", Department: "Emergency"},
	}}
	srv := NewServer(assistant, lister, &fakeFeed{ids: make(chan string)}, zerolog.Nop())

	body, _ := json.Marshal(map[string]any{
		"message": "hello",
		"context": pkg.ConversationContext{PatientID: "p-1", PreviousRequests: "None"},
	})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/assistant/message", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, lister.lastPatient)
	assert.Equal(t, "None", assistant.lastContext.PreviousRequests)
}

func TestHandleMessageHistoryFailureDoesNotFailTurn(t *testing.T) {
	assistant := &fakeAssistant{reply: pkg.Reply{Text: "hello"}}
	lister := &fakeLister{historyErr: errors.New("db down")}
	srv := NewServer(assistant, lister, &fakeFeed{ids: make(chan string)}, zerolog.Nop())

	body, _ := json.Marshal(map[string]any{
		"message": "hello",
		"context": pkg.ConversationContext{PatientID: "p-1"},
	})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/assistant/message", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, assistant.lastContext.PreviousRequests)
}

func TestHandleListRequests(t *testing.T) {
	srv := NewServer(&fakeAssistant{}, &fakeLister{requests: []pkg.AssistanceRequest{
		{ID: "r-1", Priority: "HIGH", Department: "Emergency", Room: "204", Status: pkg.StatusPending},
	}}, &fakeFeed{ids: make(chan string)}, zerolog.Nop())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/requests", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got []pkg.AssistanceRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "HIGH", got[0].Priority)
}

func TestHandleListRequestsEmptyIsJSONArray(t *testing.T) {
	srv := newTestServer(&fakeAssistant{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/requests", nil))
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeAssistant{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUnknownRouteIs404(t *testing.T) {
	srv := newTestServer(&fakeAssistant{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamWebsocketRelaysTokens(t *testing.T) {
	assistant := &fakeAssistant{tokens: []string{"[START]", "Hello", "[END]"}}
	ts := httptest.NewServer(newTestServer(assistant))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/assistant/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("hi")))

	var frames []string
	for i := 0; i < 3; i++ {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		frames = append(frames, string(payload))
	}
	assert.Equal(t, []string{"[START]", "Hello", "[END]"}, frames)
}

func TestRequestFeedStreamsEvents(t *testing.T) {
	feed := &fakeFeed{ids: make(chan string, 1)}
	feed.ids <- "req-42"
	ts := httptest.NewServer(NewServer(&fakeAssistant{}, &fakeLister{}, feed, zerolog.Nop()))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/requests/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, "req-42")
	assert.Contains(t, line, "request_created")
}
