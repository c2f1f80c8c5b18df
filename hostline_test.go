package hostline_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostline"
	"github.com/aretw0/hostline/internal/testutils"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/dsl"
	"github.com/aretw0/hostline/pkg/flow"
	"github.com/aretw0/hostline/pkg/knowledge"
)

func TestEngine_BookingConversation(t *testing.T) {
	ctx := context.Background()
	eng, err := hostline.New(ctx,
		hostline.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
		hostline.WithIDGenerator(func() string { return "fixed" }),
	)
	require.NoError(t, err)

	conv, err := eng.Start(ctx, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed", conv.ID)

	turns := []struct {
		in   hostline.TurnInput
		want domain.State
	}{
		{hostline.TurnInput{Transcript: "hello"}, domain.StateCityCollection},
		{hostline.TurnInput{Slots: map[string]any{"city": "Delhi"}}, domain.StateOutletCollection},
		{hostline.TurnInput{Slots: map[string]any{"outlet": "Connaught Place"}}, domain.StateIntentIdentification},
		{hostline.TurnInput{Transcript: "I want to book a table"}, domain.StateNewReservation},
		{hostline.TurnInput{Slots: map[string]any{
			"date": "2024-01-02", "time": "20:00", "party_size": 4,
			"customer_name": "Ravi", "phone_number": "9876543210",
		}}, domain.StateReservationConfirmation},
		{hostline.TurnInput{Slots: map[string]any{"reservation_confirmed": true}}, domain.StateFarewell},
	}
	for i, turn := range turns {
		res, err := eng.Turn(ctx, conv, turn.in)
		require.NoError(t, err, "turn %d", i)
		require.Equal(t, turn.want, res.Conversation.State, "turn %d", i)
		conv = res.Conversation
	}
	assert.True(t, conv.Ended())

	_, err = eng.Turn(ctx, conv, hostline.TurnInput{Transcript: "one more thing"})
	assert.ErrorIs(t, err, domain.ErrConversationEnded)
}

func TestEngine_NextState(t *testing.T) {
	eng, err := hostline.New(context.Background())
	require.NoError(t, err)

	got, err := eng.NextState(domain.StateCityCollection, domain.SlotContext{}, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StateFallback, got)

	_, err = eng.NextState("lobby", nil, 0)
	assert.ErrorIs(t, err, domain.ErrUnknownState)
}

func TestEngine_KnowledgePersona(t *testing.T) {
	kb, err := knowledge.Load()
	require.NoError(t, err)
	eng, err := hostline.New(context.Background(), hostline.WithKnowledge(kb))
	require.NoError(t, err)

	p := eng.Catalog().Persona()
	assert.Equal(t, kb.Brand(), p.Brand)
	assert.Equal(t, []string{"Delhi", "Bangalore"}, p.CityNames())

	prompt, err := eng.Render(domain.StateOutletCollection, domain.SlotContext{"city": "Delhi"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Connaught Place")
}

func TestEngine_TemplateDir(t *testing.T) {
	dir := testutils.WriteTemplates(t, map[string]string{
		"farewell.md": testutils.Override{State: domain.StateFarewell, Body: "Thank the caller and hang up.\n"}.Markdown(t),
	})

	eng, err := hostline.New(context.Background(), hostline.WithTemplateDir(dir))
	require.NoError(t, err)

	prompt, err := eng.Render(domain.StateFarewell, nil)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Thank the caller and hang up.")
}

func TestEngine_InvalidTable(t *testing.T) {
	_, err := hostline.New(context.Background(), hostline.WithTable(flow.NewTable(
		flow.Transition{From: domain.StateGreeting, To: "lobby"},
	)))
	assert.Error(t, err)
}

func TestEngine_CustomTable(t *testing.T) {
	ctx := context.Background()
	table, err := dsl.Extend(flow.DefaultTable()).
		From(domain.StateIntentIdentification).To(domain.StateNewReservation).
		OnKeywords("party").
		Because("party booking").
		First().
		Build()
	require.NoError(t, err)

	eng, err := hostline.New(ctx, hostline.WithTable(table))
	require.NoError(t, err)

	conv := &domain.Conversation{
		ID:     "party",
		State:  domain.StateIntentIdentification,
		Slots:  domain.NewSlotContext(map[string]any{"city": "Delhi", "outlet": "Connaught Place"}),
		Status: domain.StatusActive,
	}
	res, err := eng.Turn(ctx, conv, hostline.TurnInput{Transcript: "We are planning a party"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateNewReservation, res.Conversation.State)
	assert.Equal(t, "party booking", res.Reason)
}

func TestEngine_Graph(t *testing.T) {
	eng, err := hostline.New(context.Background())
	require.NoError(t, err)
	g, err := eng.Graph()
	require.NoError(t, err)
	assert.Len(t, g.Nodes, len(domain.AllStates()))
	assert.Len(t, g.Edges, len(eng.Table().Transitions()))
}

func TestRunner(t *testing.T) {
	eng, err := hostline.New(context.Background())
	require.NoError(t, err)

	script := strings.Join([]string{
		"hi there",
		"/set city=Delhi",
		"/state",
		"/set outlet=Connaught Place",
		"please cancel my booking",
		"/set cancellation_complete=true",
		"this line is never read",
	}, "\n")
	var out strings.Builder
	r := &hostline.Runner{Input: strings.NewReader(script), Output: &out}

	conv, err := r.Run(context.Background(), eng, "script")
	require.NoError(t, err)
	assert.Equal(t, domain.StateFarewell, conv.State)
	assert.Contains(t, out.String(), "--- conversation script ---")
	assert.Contains(t, out.String(), "[intent_identification -> cancel_reservation")
	assert.Contains(t, out.String(), "state=outlet_collection attempts=0 slots={city=Delhi}")
	assert.Len(t, conv.Transcript, 2)
}

func TestParseSlots(t *testing.T) {
	got, err := hostline.ParseSlots("city=Delhi; outlet = Vasant Kunj ;restart=true")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"city": "Delhi", "outlet": "Vasant Kunj", "restart": true}, got)

	_, err = hostline.ParseSlots("city")
	assert.Error(t, err)
}
