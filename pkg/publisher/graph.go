package publisher

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/hostline/pkg/catalog"
	"github.com/aretw0/hostline/pkg/domain"
	"github.com/aretw0/hostline/pkg/flow"
)

// Agent describes the voice agent created on the platform.
type Agent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	VoiceID     string `json:"voice_id"`
	LLM         string `json:"llm"`
}

// Flow names the conversation flow attached to the agent.
type Flow struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Node is one state of the exported flow.
type Node struct {
	State  domain.State `json:"state"`
	Name   string       `json:"name"`
	Prompt string       `json:"prompt"`
}

// Edge is one transition of the exported flow.
type Edge struct {
	From        domain.State `json:"from"`
	To          domain.State `json:"to"`
	Condition   string       `json:"condition"`
	Label       string       `json:"label"`
	Description string       `json:"description,omitempty"`
}

// Graph is the complete export.
type Graph struct {
	Agent Agent  `json:"agent"`
	Flow  Flow   `json:"flow"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node for state.
func (g Graph) Node(state domain.State) (Node, bool) {
	for _, n := range g.Nodes {
		if n.State == state {
			return n, true
		}
	}
	return Node{}, false
}

type compileConfig struct {
	agent        *Agent
	flow         *Flow
	placeholders []string
}

// Option configures Compile.
type Option func(*compileConfig)

// WithAgent overrides the agent derived from the catalog persona.
func WithAgent(a Agent) Option {
	return func(c *compileConfig) { c.agent = &a }
}

// WithFlow overrides the default flow name and description.
func WithFlow(f Flow) Option {
	return func(c *compileConfig) { c.flow = &f }
}

// WithPlaceholders sets the slots rendered as placeholders on every node.
// By default a node gets a placeholder only for the declared slots that are
// already set whenever the flow enters its state, so prompts of states that
// collect a slot keep asking for it.
func WithPlaceholders(names ...string) Option {
	return func(c *compileConfig) { c.placeholders = names }
}

// Compile builds the platform graph.
func Compile(table *flow.Table, cat *catalog.Catalog, opts ...Option) (Graph, error) {
	if table == nil || cat == nil {
		return Graph{}, errors.New("publisher: table and catalog are required")
	}
	cfg := compileConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	persona := cat.Persona()
	g := Graph{
		Agent: Agent{
			Name:        persona.Assistant,
			Description: fmt.Sprintf("Voice assistant for %s restaurants in %s", persona.Brand, strings.Join(persona.CityNames(), " and ")),
			VoiceID:     "matthew",
			LLM:         "gpt-4",
		},
		Flow: Flow{
			Name:        persona.Brand + " Booking Flow",
			Description: "Flow for handling restaurant inquiries and reservations for " + persona.Brand,
		},
	}
	if cfg.agent != nil {
		g.Agent = *cfg.agent
	}
	if cfg.flow != nil {
		g.Flow = *cfg.flow
	}

	entry := flow.EntrySlots(table, domain.InitialState)
	for _, t := range cat.Templates() {
		names := slices.DeleteFunc(slices.Clone(t.Slots), func(name string) bool {
			return !slices.Contains(entry[t.State], name)
		})
		if cfg.placeholders != nil {
			names = cfg.placeholders
		}
		prompt, err := cat.RenderPlaceholders(t.State, names...)
		if err != nil {
			return Graph{}, fmt.Errorf("compile node %s: %w", t.State, err)
		}
		g.Nodes = append(g.Nodes, Node{State: t.State, Name: NodeName(t.State), Prompt: prompt})
	}

	for _, tr := range table.Transitions() {
		if _, ok := g.Node(tr.From); !ok {
			return Graph{}, fmt.Errorf("compile edge: %w: %q has no template", domain.ErrUnknownState, tr.From)
		}
		if _, ok := g.Node(tr.To); !ok {
			return Graph{}, fmt.Errorf("compile edge: %w: %q has no template", domain.ErrUnknownState, tr.To)
		}
		g.Edges = append(g.Edges, Edge{
			From:        tr.From,
			To:          tr.To,
			Condition:   tr.Guard.Expr(),
			Label:       tr.Guard.String(),
			Description: tr.Description,
		})
	}
	return g, nil
}

// NodeName turns a state id into a display name: "city_collection" becomes
// "City Collection".
func NodeName(state domain.State) string {
	words := strings.Split(string(state), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
