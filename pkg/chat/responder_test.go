package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponder(t *testing.T, opts ...Option) *Responder {
	t.Helper()
	r, err := New(opts...)
	require.NoError(t, err)
	return r
}

func TestReply_Routing(t *testing.T) {
	r := newResponder(t, WithChooser(FixedChooser(0)))

	tests := []struct {
		message    string
		wantSource string
		wantPrefix string
	}{
		{"What are the veg starters?", SourcePredefined, "The veg starters available are"},
		{"Can I get Jain food", SourcePredefined, "Yes, Jain food is available"},
		{"how much does the buffet cost", SourcePredefined, "Our buffet prices vary"},
		{"Do you serve mocktails?", SourceBeverages, "We offer a variety of beverages"},
		{"what's on the menu", SourceMenu, "Our menu offers these categories"},
		{"is there valet for my car", SourceFallback, "I'm sorry, I don't have specific information"},
		{"", SourceFallback, "I'm sorry"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			reply := r.Reply(tt.message)
			assert.Equal(t, tt.wantSource, reply.Source)
			assert.True(t, reply.Finished)
			assert.Contains(t, reply.Text, tt.wantPrefix)
		})
	}
}

func TestReply_PhrasingFollowsChooser(t *testing.T) {
	first := newResponder(t, WithChooser(FixedChooser(0))).Reply("what type of fish do you have")
	second := newResponder(t, WithChooser(FixedChooser(1))).Reply("what type of fish do you have")

	assert.Equal(t, SourcePredefined, first.Source)
	assert.NotEqual(t, first.Text, second.Text)
	assert.Contains(t, second.Text, "Our seafood menu includes")
}

func TestReply_RandomChooserStaysInTable(t *testing.T) {
	r := newResponder(t)
	valid := map[string]bool{}
	for _, s := range r.fallback {
		valid[s] = true
	}
	for i := 0; i < 20; i++ {
		assert.True(t, valid[r.Reply("zzz").Text])
	}
}

func TestMatch(t *testing.T) {
	r := newResponder(t, WithChooser(FixedChooser(2)))

	text, ok := r.Match("What flavors of KULFI are there")
	require.True(t, ok)
	assert.Contains(t, text, "The kulfi flavors we offer are")

	_, ok = r.Match("parking?")
	assert.False(t, ok)
}

func TestFixedChooser(t *testing.T) {
	assert.Equal(t, 0, FixedChooser(5).Choose(1))
	assert.Equal(t, 2, FixedChooser(5).Choose(3))
	assert.Equal(t, 2, FixedChooser(-1).Choose(3))
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("fallback: []"))
	assert.ErrorContains(t, err, "at least one fallback")

	_, err = Parse([]byte("fallback: [x]\npredefined:\n  - pattern: '('\n    responses: [y]\n"))
	assert.Error(t, err)
}
