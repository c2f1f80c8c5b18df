package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostline/internal/runtime"
	"github.com/aretw0/hostline/pkg/catalog"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/flow"
	"github.com/aretw0/hostline/pkg/knowledge"
	"github.com/aretw0/hostline/pkg/outcome"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cat, err := catalog.Default(nil)
	require.NoError(t, err)
	kb, err := knowledge.Load()
	require.NoError(t, err)
	clock := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return NewServer(runtime.NewEngine(flow.DefaultTable(), cat), "test", WithKnowledge(kb), WithClock(clock))
}

func TestNextState(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		args         StateArgs
		want         domain.State
		transitioned bool
	}{
		{"city given", StateArgs{State: "city_collection", Slots: map[string]any{"city": "Delhi"}}, domain.StateOutletCollection, true},
		{"nothing collected", StateArgs{State: "city_collection"}, domain.StateCityCollection, false},
		{"attempts exhausted", StateArgs{State: "city_collection", Attempts: 3}, domain.StateFallback, true},
		{"keyword intent", StateArgs{State: "intent_identification", Transcript: "I want to cancel"}, domain.StateCancelReservation, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.handleNextState(ctx, mcp.CallToolRequest{}, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.State)
			assert.Equal(t, tt.transitioned, got.Transitioned)
		})
	}

	_, err := s.handleNextState(ctx, mcp.CallToolRequest{}, StateArgs{State: "lobby"})
	assert.ErrorIs(t, err, domain.ErrUnknownState)
}

func TestRenderPrompt(t *testing.T) {
	s := newTestServer(t)

	got, err := s.handleRenderPrompt(context.Background(), mcp.CallToolRequest{}, StateArgs{
		State: "outlet_collection",
		Slots: map[string]any{"city": "Bangalore"},
	})
	require.NoError(t, err)
	assert.Contains(t, got.Prompt, "Bangalore")
	assert.False(t, got.Terminal)

	got, err = s.handleRenderPrompt(context.Background(), mcp.CallToolRequest{}, StateArgs{State: "farewell"})
	require.NoError(t, err)
	assert.True(t, got.Terminal)
}

func TestClassifyOutcome(t *testing.T) {
	s := newTestServer(t)

	rec, err := s.handleClassify(context.Background(), mcp.CallToolRequest{}, ClassifyArgs{
		Transcript: "Hi, I'd like to book a table for 6 people tomorrow at 9 pm. My name is Asha.",
	})
	require.NoError(t, err)
	assert.Equal(t, outcome.Availability, rec.Outcome)
	assert.Equal(t, "2024-05-02", rec.BookingDate)
	assert.Equal(t, "21:00", rec.BookingTime)
	assert.Equal(t, "6", rec.Guests)
	assert.Equal(t, "Asha", rec.CustomerName)
	assert.Equal(t, outcome.NA, rec.PhoneNumber)

	_, err = s.handleClassify(context.Background(), mcp.CallToolRequest{}, ClassifyArgs{})
	assert.Error(t, err)
}

func TestAskKnowledge(t *testing.T) {
	s := newTestServer(t)

	ans, err := s.handleAskKnowledge(context.Background(), mcp.CallToolRequest{}, knowledge.QueryRequest{Query: "what is on the menu"})
	require.NoError(t, err)
	assert.Equal(t, knowledge.SourceMenu, ans.Source)
	assert.NotEmpty(t, ans.Text)

	_, err = s.handleAskKnowledge(context.Background(), mcp.CallToolRequest{}, knowledge.QueryRequest{})
	assert.Error(t, err)
}
