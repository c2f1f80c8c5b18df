package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"text/template"

	"github.com/aretw0/hostline/pkg/domain"
)

//go:embed templates/*.tmpl
var builtinFS embed.FS

// PersonaKey is the only root field a template may read besides its slots.
const PersonaKey = "persona"

const introName = "intro"

// Template is the prompt source of one state.
type Template struct {
	State  domain.State
	Name   string
	Slots  []string
	Source string

	tmpl *template.Template
}

// Catalog maps every state to its compiled template. It is immutable.
type Catalog struct {
	templates map[domain.State]*Template
	intro     string
	persona   Persona
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithPersona replaces the default brand persona.
func WithPersona(p Persona) Option {
	return func(c *Catalog) {
		c.persona = p
	}
}

// WithIntro replaces the shared "intro" partial.
func WithIntro(source string) Option {
	return func(c *Catalog) {
		c.intro = source
	}
}

var builtinSlots = map[domain.State][]string{
	domain.StateGreeting:                nil,
	domain.StateCityCollection:          {domain.SlotCity},
	domain.StateOutletCollection:        {domain.SlotCity, domain.SlotOutlet},
	domain.StateIntentIdentification:    {domain.SlotCity, domain.SlotOutlet, domain.SlotIntent},
	domain.StateInformationInquiry:      {domain.SlotCity, domain.SlotOutlet},
	domain.StateNewReservation:          append([]string{domain.SlotCity, domain.SlotOutlet}, domain.ReservationSlots...),
	domain.StateReservationConfirmation: append([]string{domain.SlotCity, domain.SlotOutlet}, domain.ReservationSlots...),
	domain.StateModifyReservation: {
		domain.SlotCity, domain.SlotOutlet, domain.SlotCustomerName, domain.SlotReservationDate,
		domain.SlotModificationType, domain.SlotNewDate, domain.SlotNewTime, domain.SlotNewPartySize,
	},
	domain.StateCancelReservation: {
		domain.SlotCity, domain.SlotOutlet, domain.SlotCustomerName, domain.SlotReservationDate, domain.SlotConfirmation,
	},
	domain.StateFallback: {domain.SlotCity, domain.SlotOutlet},
	domain.StateFarewell: {domain.SlotCity, domain.SlotOutlet, domain.SlotDate, domain.SlotTime},
}

// Builtin returns the embedded templates, one per state.
func Builtin() ([]Template, error) {
	out := make([]Template, 0, len(builtinSlots))
	for _, s := range domain.AllStates() {
		src, err := builtinFS.ReadFile("templates/" + string(s) + ".tmpl")
		if err != nil {
			return nil, fmt.Errorf("read builtin template %s: %w", s, err)
		}
		out = append(out, Template{
			State:  s,
			Name:   string(s),
			Slots:  slices.Clone(builtinSlots[s]),
			Source: string(src),
		})
	}
	return out, nil
}

func builtinIntro() string {
	src, err := builtinFS.ReadFile("templates/" + introName + ".tmpl")
	if err != nil {
		panic(fmt.Sprintf("catalog: missing embedded intro: %v", err))
	}
	return string(src)
}

// Default builds a catalog from the embedded templates, with overrides
// replacing the template of their state.
func Default(overrides []Template, opts ...Option) (*Catalog, error) {
	base, err := Builtin()
	if err != nil {
		return nil, err
	}
	return New(merge(base, overrides), opts...)
}

// New compiles and validates templates. Every state must be covered.
func New(templates []Template, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		templates: make(map[domain.State]*Template, len(templates)),
		intro:     builtinIntro(),
		persona:   DefaultPersona(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, t := range templates {
		if !t.State.Valid() {
			return nil, fmt.Errorf("template %q: %w: %q", t.Name, domain.ErrUnknownState, t.State)
		}
		compiled, err := c.compile(t)
		if err != nil {
			return nil, err
		}
		c.templates[t.State] = compiled
	}

	var missing []string
	for _, s := range domain.AllStates() {
		if _, ok := c.templates[s]; !ok {
			missing = append(missing, string(s))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("catalog has no template for: %s", strings.Join(missing, ", "))
	}
	return c, nil
}

func (c *Catalog) compile(t Template) (*Template, error) {
	if t.Name == "" {
		t.Name = string(t.State)
	}
	for _, slot := range t.Slots {
		if !domain.IsKnownSlot(slot) {
			return nil, &SlotReferenceError{Template: t.Name, Slot: slot, Reason: "declares unknown slot"}
		}
	}

	root := template.New(t.Name).Funcs(funcs).Option("missingkey=zero")
	if _, err := root.New(introName).Parse(c.intro); err != nil {
		return nil, fmt.Errorf("parse intro: %w", err)
	}
	if _, err := root.Parse(t.Source); err != nil {
		return nil, fmt.Errorf("parse template %q: %w", t.Name, err)
	}
	if err := checkReferences(root, t.Name, t.Slots); err != nil {
		return nil, err
	}

	t.Slots = slices.Clone(t.Slots)
	t.tmpl = root
	return &t, nil
}

// Render produces the prompt for state from the collected slots.
// Unset declared slots render as the empty string.
func (c *Catalog) Render(state domain.State, slots domain.SlotContext) (string, error) {
	t, ok := c.templates[state]
	if !ok {
		return "", fmt.Errorf("render: %w: %q", domain.ErrUnknownState, state)
	}
	data := c.data(t, func(name string) string { return slots.String(name) })
	return execute(t, data)
}

// RenderPlaceholders renders state with the named slots replaced by
// {{name}} placeholders and every other slot unset. The voice platform
// substitutes the placeholders from its own dynamic variables.
func (c *Catalog) RenderPlaceholders(state domain.State, names ...string) (string, error) {
	t, ok := c.templates[state]
	if !ok {
		return "", fmt.Errorf("render: %w: %q", domain.ErrUnknownState, state)
	}
	data := c.data(t, func(name string) string {
		if slices.Contains(names, name) {
			return "{{" + name + "}}"
		}
		return ""
	})
	return execute(t, data)
}

// Template returns the template registered for state.
func (c *Catalog) Template(state domain.State) (Template, bool) {
	t, ok := c.templates[state]
	if !ok {
		return Template{}, false
	}
	return *t, true
}

// Templates returns every template in dialogue order.
func (c *Catalog) Templates() []Template {
	out := make([]Template, 0, len(c.templates))
	for _, s := range domain.AllStates() {
		if t, ok := c.templates[s]; ok {
			out = append(out, *t)
		}
	}
	return out
}

// Persona returns the persona bound to every render.
func (c *Catalog) Persona() Persona {
	return c.persona
}

func (c *Catalog) data(t *Template, value func(string) string) map[string]any {
	data := make(map[string]any, len(t.Slots)+1)
	for _, name := range t.Slots {
		data[name] = value(name)
	}
	data[PersonaKey] = c.persona
	return data
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

func execute(t *Template, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %q: %w", t.Name, err)
	}

	lines := strings.Split(buf.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	out := blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out), nil
}

func merge(base, overrides []Template) []Template {
	out := slices.Clone(base)
	for _, o := range overrides {
		replaced := false
		for i := range out {
			if out[i].State == o.State {
				out[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, o)
		}
	}
	return out
}
