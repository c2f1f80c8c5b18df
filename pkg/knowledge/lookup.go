package knowledge

import (
	"fmt"
	"slices"
	"strings"
)

// Info types an outlet can be asked about.
const (
	InfoAddress         = "address"
	InfoContact         = "contact"
	InfoHours           = "hours"
	InfoFacilities      = "facilities"
	InfoParking         = "parking"
	InfoSpecialFeatures = "special_features"
)

var outletInfoTypes = []string{InfoAddress, InfoContact, InfoHours, InfoFacilities, InfoParking, InfoSpecialFeatures}

// Sources reported by Query.
const (
	SourcePredefined = "predefined_answers"
	SourceMenu       = "menu"
	SourceGeneral    = "general"
	SourceError      = "error"
)

// Answer is a budgeted knowledge response.
type Answer struct {
	// Data is the structured payload before rendering.
	Data any `json:"data,omitempty"`
	// Text is Data rendered as JSON within the token budget, or a predefined sentence.
	Text       string `json:"answer"`
	Source     string `json:"source"`
	TokenCount int    `json:"token_count"`
}

// QueryRequest is a free-text question with optional location context.
type QueryRequest struct {
	Query  string `json:"query" mapstructure:"query"`
	City   string `json:"city,omitempty" mapstructure:"city"`
	Outlet string `json:"outlet,omitempty" mapstructure:"outlet"`
}

func (b *Base) answer(data any, source string) Answer {
	text := FormatJSON(data, b.maxTokens)
	return Answer{Data: data, Text: text, Source: source, TokenCount: CountTokens(text)}
}

// Outlet describes one outlet. An empty or unknown infoType yields a summary.
func (b *Base) Outlet(city, outlet, infoType string) (Answer, error) {
	o, err := b.outlet(city, outlet)
	if err != nil {
		return Answer{}, err
	}
	c, _ := b.city(city)
	source := c.Key + "." + o.Key
	if slices.Contains(outletInfoTypes, infoType) {
		source += "." + infoType
	}
	return b.answer(formatOutlet(o, infoType), source), nil
}

// Menu returns one category, or a summary of every category when category
// is empty or unknown.
func (b *Base) Menu(category string) Answer {
	data := b.formatMenu(category)
	if _, ok := data.Get("menu_category"); ok {
		return b.answer(data, SourceMenu+"."+category)
	}
	return b.answer(data, SourceMenu)
}

var menuKeywords = []string{"menu", "food", "dish", "cuisine", "eat"}

// Query routes a free-text question: predefined answers first, then menu
// questions, then outlet or city facts from the supplied context, and
// finally a general overview.
func (b *Base) Query(req QueryRequest) Answer {
	query := strings.ToLower(strings.TrimSpace(req.Query))

	if b.predefined != nil {
		if text, ok := b.predefined.Match(query); ok {
			return Answer{Text: text, Source: SourcePredefined, TokenCount: CountTokens(text)}
		}
	}

	switch {
	case containsAny(query, menuKeywords):
		for _, m := range b.doc.Menu {
			if strings.Contains(query, strings.ReplaceAll(m.Key, "_", " ")) {
				return b.answer(b.formatMenu(m.Key), SourceMenu+"."+m.Key)
			}
		}
		return b.answer(b.formatMenu(""), SourceMenu)

	case req.City != "" && req.Outlet != "":
		o, err := b.outlet(req.City, req.Outlet)
		if err != nil {
			return b.answer(Fields{{Key: "error", Value: "Could not find information about this outlet"}}, SourceError)
		}
		source := Key(req.City) + "." + o.Key
		for _, info := range []string{InfoHours, InfoFacilities, InfoParking, InfoAddress, InfoSpecialFeatures} {
			if strings.Contains(query, strings.ReplaceAll(info, "_", " ")) {
				return b.answer(formatOutlet(o, info), source+"."+info)
			}
		}
		return b.answer(formatOutlet(o, ""), source)

	case req.City != "":
		c, err := b.city(req.City)
		if err != nil {
			return b.answer(Fields{{Key: "error", Value: fmt.Sprintf("Could not find information about %s", req.City)}}, SourceError)
		}
		keys, _ := b.Outlets(c.Key)
		return b.answer(Fields{
			{Key: "outlets", Value: keys},
			{Key: "summary", Value: fmt.Sprintf("There are %d %s outlets in %s", len(c.Outlets), b.doc.Brand, req.City)},
		}, c.Key)
	}

	return b.answer(Fields{
		{Key: "cities", Value: b.Cities()},
		{Key: "menu_categories", Value: b.MenuCategories()},
		{Key: "help", Value: "Try asking about specific cities, outlets, or menu items"},
	}, SourceGeneral)
}

func formatOutlet(o *Outlet, infoType string) Fields {
	if slices.Contains(outletInfoTypes, infoType) {
		return Fields{
			{Key: "info_type", Value: infoType},
			{Key: "details", Value: outletField(o, infoType)},
		}
	}
	return Fields{
		{Key: "address", Value: o.Address},
		{Key: "facilities_summary", Value: fmt.Sprintf("%d facilities available", len(o.Facilities))},
		{Key: "hours_summary", Value: "Open for lunch and dinner daily"},
		{Key: "available_info", Value: slices.Clone(outletInfoTypes)},
	}
}

func outletField(o *Outlet, infoType string) any {
	switch infoType {
	case InfoAddress:
		return o.Address
	case InfoContact:
		return o.Contact
	case InfoHours:
		return o.Hours
	case InfoFacilities:
		return o.Facilities
	case InfoParking:
		return o.Parking
	case InfoSpecialFeatures:
		return o.SpecialFeatures
	}
	return nil
}

func (b *Base) formatMenu(category string) Fields {
	for _, m := range b.doc.Menu {
		if m.Key == category {
			return Fields{
				{Key: "menu_category", Value: m.Key},
				{Key: "items", Value: m.Items},
			}
		}
	}

	samples := make(Fields, 0, len(b.doc.Menu))
	for _, m := range b.doc.Menu {
		samples = append(samples, Field{Key: m.Key, Value: sample(m.Items, 2)})
	}
	return Fields{
		{Key: "categories", Value: b.MenuCategories()},
		{Key: "sample_items", Value: samples},
	}
}

// sample keeps the first n entries of a list (or the first n sorted keys of
// a map) and appends "..." when something was left out.
func sample(items any, n int) []any {
	var all []any
	switch t := items.(type) {
	case []any:
		all = t
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			all = append(all, k)
		}
	default:
		return []any{items}
	}
	if len(all) <= n {
		return slices.Clone(all)
	}
	return append(slices.Clone(all[:n]), "...")
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
