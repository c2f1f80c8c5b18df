package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostline/internal/runtime"
	adapter "github.com/aretw0/hostline/pkg/adapters/http"
	"github.com/aretw0/hostline/pkg/adapters/memory"
	"github.com/aretw0/hostline/pkg/calllog"
	"github.com/aretw0/hostline/pkg/catalog"
	"github.com/aretw0/hostline/pkg/chat"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/flow"
	"github.com/aretw0/hostline/pkg/knowledge"
	"github.com/aretw0/hostline/pkg/outcome"
	"github.com/aretw0/hostline/pkg/publisher"
	"github.com/aretw0/hostline/pkg/session"
)

type fixture struct {
	server *httptest.Server
	sink   *calllog.MemorySink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cat, err := catalog.Default(nil)
	require.NoError(t, err)
	table := flow.DefaultTable()
	engine := runtime.NewEngine(table, cat)

	responder, err := chat.New(chat.WithChooser(chat.FixedChooser(0)))
	require.NoError(t, err)
	kb, err := knowledge.Load(knowledge.WithPredefined(responder))
	require.NoError(t, err)

	graph, err := publisher.Compile(table, cat)
	require.NoError(t, err)

	sink := calllog.NewMemorySink()
	clock := func() time.Time { return time.Date(2024, 2, 10, 19, 0, 0, 0, time.UTC) }

	h, err := adapter.NewHandler(adapter.Config{
		Sessions:  session.NewManager(memory.NewStore(), engine),
		Knowledge: kb,
		Chat:      responder,
		CallLog:   calllog.NewLogger(sink, calllog.WithClock(clock)),
		Graph:     &graph,
		Version:   "1.2.3",
	})
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &fixture{server: srv, sink: sink}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	data, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(data, &out)
	return resp, out
}

func TestHealthAndInfo(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	_, body = f.do(t, http.MethodGet, "/info", nil)
	assert.Equal(t, "1.2.3", body["version"])
	assert.Equal(t, "1.0.0", body["api_version"])
}

func TestConversationLifecycle(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/conversations", map[string]any{"id": "call-1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, body["prompt"])

	resp, body = f.do(t, http.MethodPost, "/conversations/call-1/turns", map[string]any{"transcript": "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(domain.StateCityCollection), body["conversation"].(map[string]any)["state"])

	resp, body = f.do(t, http.MethodPost, "/conversations/call-1/turns", map[string]any{
		"transcript": "Delhi",
		"slots":      map[string]any{"city": "Delhi"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["transitioned"])
	assert.Contains(t, body["prompt"], "Delhi")

	resp, body = f.do(t, http.MethodGet, "/conversations/call-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(domain.StateOutletCollection), body["conversation"].(map[string]any)["state"])

	_, body = f.do(t, http.MethodGet, "/conversations", nil)
	assert.Equal(t, []any{"call-1"}, body["conversations"])

	resp, _ = f.do(t, http.MethodDelete, "/conversations/call-1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/conversations/call-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTurn_Errors(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/conversations/nope/turns", map[string]any{"transcript": "hi"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	f.do(t, http.MethodPost, "/conversations", map[string]any{"id": "c"})
	resp, body := f.do(t, http.MethodPost, "/conversations/c/turns", map[string]any{"slots": "not an object"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	resp, _ = f.do(t, http.MethodPost, "/conversations/c/turns", map[string]any{"transcript": strings.Repeat("book a table ", 400)})
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestTurn_EndedConversationConflicts(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/conversations", map[string]any{"id": "c", "slots": map[string]any{"city": "Delhi"}})

	steps := []map[string]any{
		{"transcript": "hi"},
		{"slots": map[string]any{"city": "Delhi"}},
		{"slots": map[string]any{"outlet": "Vasant Kunj"}},
		{"transcript": "please cancel my booking"},
		{"slots": map[string]any{"confirmation": "yes"}},
	}
	var body map[string]any
	for _, s := range steps {
		_, body = f.do(t, http.MethodPost, "/conversations/c/turns", s)
	}
	require.Equal(t, true, body["terminal"])

	resp, _ := f.do(t, http.MethodPost, "/conversations/c/turns", map[string]any{"transcript": "hello?"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestWebhook(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/webhook", map[string]any{"event_type": "call_started", "payload": map[string]any{"call_id": "x"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.Empty(t, f.sink.Records())

	resp, body = f.do(t, http.MethodPost, "/webhook", map[string]any{"event_type": "call_paused", "payload": map[string]any{}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "warning", body["status"])

	_, body = f.do(t, http.MethodPost, "/webhook", map[string]any{
		"event_type": "call_ended",
		"payload": map[string]any{
			"phone_number": 9876543210,
			"turns": []any{
				map[string]any{"role": "user", "transcript": "I want to book a table"},
				map[string]any{"role": "agent", "transcript": "Sure"},
				map[string]any{"role": "user", "transcript": "for 4 people tomorrow at 8 pm"},
			},
		},
	})
	assert.Equal(t, "success", body["status"])

	_, body = f.do(t, http.MethodPost, "/webhook", map[string]any{
		"event_type": "call_analyzed",
		"payload":    map[string]any{"from_number": "555", "transcript": "I need to cancel my reservation"},
	})
	assert.Equal(t, "success", body["status"])

	records := f.sink.Records()
	require.Len(t, records, 2)
	assert.Equal(t, outcome.Availability, records[0].Outcome)
	assert.Equal(t, "9876543210", records[0].PhoneNumber)
	assert.Equal(t, "2024-02-11", records[0].BookingDate)
	assert.Equal(t, "20:00", records[0].BookingTime)
	assert.Equal(t, "4", records[0].Guests)
	assert.Equal(t, outcome.PostBooking, records[1].Outcome)
	assert.Equal(t, "555", records[1].PhoneNumber)
}

func TestWebhook_RejectsMissingEventType(t *testing.T) {
	f := newFixture(t)
	resp, _ := f.do(t, http.MethodPost, "/webhook", map[string]any{"payload": map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatbotLog(t *testing.T) {
	f := newFixture(t)

	_, body := f.do(t, http.MethodPost, "/chatbot-log", map[string]any{"transcript": "what time do you open"})
	assert.Equal(t, "success", body["status"])

	records := f.sink.Records()
	require.Len(t, records, 1)
	assert.Equal(t, outcome.ModalityChatbot, records[0].Modality)
	assert.Equal(t, outcome.Enquiry, records[0].Outcome)
	assert.Equal(t, outcome.NA, records[0].PhoneNumber)
}

func TestChat(t *testing.T) {
	f := newFixture(t)

	_, body := f.do(t, http.MethodPost, "/chat", map[string]any{"message": "Do you have mocktails?"})
	assert.Equal(t, chat.SourceBeverages, body["source"])

	resp, _ := f.do(t, http.MethodPost, "/chat", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestKnowledgeRoutes(t *testing.T) {
	f := newFixture(t)

	_, body := f.do(t, http.MethodGet, "/kb/cities", nil)
	assert.Equal(t, []any{"delhi", "bangalore"}, body["cities"])

	_, body = f.do(t, http.MethodGet, "/kb/outlets/Delhi", nil)
	assert.Contains(t, body["outlets"], "connaught_place")

	resp, _ := f.do(t, http.MethodGet, "/kb/outlets/Mumbai", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = f.do(t, http.MethodGet, "/kb/outlet/delhi/connaught_place?info_type=address", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "delhi.connaught_place.address", body["source"])

	resp, _ = f.do(t, http.MethodGet, "/kb/outlet/delhi/connaught_place?info_type=wifi", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, body = f.do(t, http.MethodGet, "/kb/menu", nil)
	assert.Equal(t, knowledge.SourceMenu, body["source"])

	_, body = f.do(t, http.MethodPost, "/kb/query", map[string]any{"query": "can i get jain food"})
	assert.Equal(t, knowledge.SourcePredefined, body["source"])

	resp, _ = f.do(t, http.MethodPost, "/kb/query", map[string]any{"query": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGraphRoutes(t *testing.T) {
	f := newFixture(t)

	_, body := f.do(t, http.MethodGet, "/graph", nil)
	assert.Len(t, body["nodes"], len(domain.AllStates()))

	f.do(t, http.MethodPost, "/conversations", map[string]any{"id": "g"})
	f.do(t, http.MethodPost, "/conversations/g/turns", map[string]any{"transcript": "hi"})

	resp, err := http.Get(f.server.URL + "/graph/mermaid?conversation_id=g")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(data), "class greeting visited;")
	assert.Contains(t, string(data), "class city_collection current;")
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/conversations", map[string]any{"id": "s"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.server.URL+"/conversations/s/events?watch=state", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	f.do(t, http.MethodPost, "/conversations/s/turns", map[string]any{"transcript": "hello"})

	for {
		line, err = reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			break
		}
	}
	var diff domain.ConversationDiff
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &diff))
	require.NotNil(t, diff.State)
	assert.Equal(t, domain.StateCityCollection, *diff.State)
}
