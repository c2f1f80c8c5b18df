package chat

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/responses.yaml
var embedded []byte

// Reply sources.
const (
	SourcePredefined = "predefined_answers"
	SourceBeverages  = "beverages"
	SourceMenu       = "menu_categories"
	SourceFallback   = "fallback"
)

// Reply is the answer to one chat message.
type Reply struct {
	Text     string `json:"response"`
	Source   string `json:"source"`
	Finished bool   `json:"finished"`
}

type keywordTable struct {
	Keywords  []string `yaml:"keywords"`
	Responses []string `yaml:"responses"`
}

type tables struct {
	Predefined []struct {
		Pattern   string   `yaml:"pattern"`
		Responses []string `yaml:"responses"`
	} `yaml:"predefined"`
	Beverages keywordTable `yaml:"beverages"`
	Menu      keywordTable `yaml:"menu"`
	Fallback  []string     `yaml:"fallback"`
}

type rule struct {
	pattern   *regexp.Regexp
	responses []string
}

// Responder is immutable after construction.
type Responder struct {
	rules     []rule
	beverages keywordTable
	menu      keywordTable
	fallback  []string
	chooser   Chooser
}

// Option configures a Responder.
type Option func(*Responder)

// WithChooser replaces the random phrasing selection.
func WithChooser(c Chooser) Option {
	return func(r *Responder) {
		if c != nil {
			r.chooser = c
		}
	}
}

// New loads the embedded response tables.
func New(opts ...Option) (*Responder, error) {
	return Parse(embedded, opts...)
}

// Parse builds a Responder from YAML tables.
func Parse(data []byte, opts ...Option) (*Responder, error) {
	var t tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse chat tables: %w", err)
	}
	if len(t.Fallback) == 0 {
		return nil, fmt.Errorf("chat tables need at least one fallback response")
	}

	r := &Responder{
		beverages: t.Beverages,
		menu:      t.Menu,
		fallback:  t.Fallback,
		chooser:   RandomChooser{},
	}
	for i, p := range t.Predefined {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, fmt.Errorf("predefined answer %d: %w", i, err)
		}
		if len(p.Responses) == 0 {
			return nil, fmt.Errorf("predefined answer %d (%s) has no responses", i, p.Pattern)
		}
		r.rules = append(r.rules, rule{pattern: re, responses: p.Responses})
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Reply answers message.
func (r *Responder) Reply(message string) Reply {
	query := strings.ToLower(strings.TrimSpace(message))

	if text, ok := r.Match(query); ok {
		return Reply{Text: text, Source: SourcePredefined, Finished: true}
	}
	if containsAny(query, r.beverages.Keywords) && len(r.beverages.Responses) > 0 {
		return Reply{Text: r.pick(r.beverages.Responses), Source: SourceBeverages, Finished: true}
	}
	if containsAny(query, r.menu.Keywords) && len(r.menu.Responses) > 0 {
		return Reply{Text: r.pick(r.menu.Responses), Source: SourceMenu, Finished: true}
	}
	return Reply{Text: r.pick(r.fallback), Source: SourceFallback, Finished: true}
}

// Match returns a predefined answer for query when one of the patterns matches.
func (r *Responder) Match(query string) (string, bool) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return "", false
	}
	for _, rl := range r.rules {
		if rl.pattern.MatchString(query) {
			return r.pick(rl.responses), true
		}
	}
	return "", false
}

func (r *Responder) pick(options []string) string {
	return options[r.chooser.Choose(len(options))]
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if w != "" && strings.Contains(s, w) {
			return true
		}
	}
	return false
}
