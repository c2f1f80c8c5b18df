package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/knowledge.yaml
var embedded []byte

// DefaultMaxTokens bounds every rendered answer.
const DefaultMaxTokens = 800

var (
	// ErrCityNotFound is returned when a city key is not in the base.
	ErrCityNotFound = errors.New("city not found")
	// ErrOutletNotFound is returned when an outlet key is not in the city.
	ErrOutletNotFound = errors.New("outlet not found")
)

// Outlet is one restaurant.
type Outlet struct {
	Key             string                       `yaml:"key"`
	Name            string                       `yaml:"name"`
	Address         string                       `yaml:"address"`
	Contact         string                       `yaml:"contact"`
	Hours           map[string]map[string]string `yaml:"hours"`
	Facilities      []string                     `yaml:"facilities"`
	Parking         string                       `yaml:"parking"`
	SpecialFeatures []string                     `yaml:"special_features"`
}

// City groups outlets.
type City struct {
	Key     string   `yaml:"key"`
	Name    string   `yaml:"name"`
	Outlets []Outlet `yaml:"outlets"`
}

// MenuCategory is a list of dishes or a map of notes.
type MenuCategory struct {
	Key   string `yaml:"key"`
	Items any    `yaml:"items"`
}

type document struct {
	Brand     string         `yaml:"brand"`
	Assistant string         `yaml:"assistant"`
	Cities    []City         `yaml:"cities"`
	Menu      []MenuCategory `yaml:"menu"`
}

// Predefined answers well-known questions before the base is consulted.
type Predefined interface {
	Match(query string) (string, bool)
}

// Base is read-only after construction and safe for concurrent use.
type Base struct {
	doc        document
	maxTokens  int
	predefined Predefined
}

// Option configures a Base.
type Option func(*Base)

// WithMaxTokens sets the answer budget. Non-positive values keep the default.
func WithMaxTokens(n int) Option {
	return func(b *Base) {
		if n > 0 {
			b.maxTokens = n
		}
	}
}

// WithPredefined consults p first in Query.
func WithPredefined(p Predefined) Option {
	return func(b *Base) {
		b.predefined = p
	}
}

// Load parses the embedded knowledge base.
func Load(opts ...Option) (*Base, error) {
	return Parse(embedded, opts...)
}

// Parse builds a Base from YAML.
func Parse(data []byte, opts ...Option) (*Base, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge base: %w", err)
	}
	if len(doc.Cities) == 0 {
		return nil, fmt.Errorf("knowledge base has no cities")
	}
	b := &Base{doc: doc, maxTokens: DefaultMaxTokens}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Brand is the restaurant chain name.
func (b *Base) Brand() string { return b.doc.Brand }

// Assistant is the name the voice assistant introduces itself with.
func (b *Base) Assistant() string { return b.doc.Assistant }

// MaxTokens is the configured answer budget.
func (b *Base) MaxTokens() int { return b.maxTokens }

// Cities returns every city key.
func (b *Base) Cities() []string {
	out := make([]string, len(b.doc.Cities))
	for i, c := range b.doc.Cities {
		out[i] = c.Key
	}
	return out
}

// Directory returns cities with their outlets, for display.
func (b *Base) Directory() []City {
	return slices.Clone(b.doc.Cities)
}

// Outlets returns the outlet keys of city.
func (b *Base) Outlets(city string) ([]string, error) {
	c, err := b.city(city)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(c.Outlets))
	for i, o := range c.Outlets {
		out[i] = o.Key
	}
	return out, nil
}

// MenuCategories returns the menu category keys in order.
func (b *Base) MenuCategories() []string {
	out := make([]string, len(b.doc.Menu))
	for i, m := range b.doc.Menu {
		out[i] = m.Key
	}
	return out
}

func (b *Base) city(name string) (*City, error) {
	key := Key(name)
	for i := range b.doc.Cities {
		if b.doc.Cities[i].Key == key {
			return &b.doc.Cities[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrCityNotFound, name)
}

func (b *Base) outlet(city, outlet string) (*Outlet, error) {
	c, err := b.city(city)
	if err != nil {
		return nil, err
	}
	key := Key(outlet)
	for i := range c.Outlets {
		if c.Outlets[i].Key == key {
			return &c.Outlets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q in %s", ErrOutletNotFound, outlet, c.Key)
}

// Key normalises a display name ("Connaught Place") to a lookup key ("connaught_place").
func Key(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
