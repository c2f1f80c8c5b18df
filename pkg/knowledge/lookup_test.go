package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAnswers map[string]string

func (s staticAnswers) Match(query string) (string, bool) {
	for k, v := range s {
		if strings.Contains(query, k) {
			return v, true
		}
	}
	return "", false
}

func TestOutlet(t *testing.T) {
	b := loadBase(t)

	ans, err := b.Outlet("delhi", "Connaught Place", InfoAddress)
	require.NoError(t, err)
	assert.Equal(t, "delhi.connaught_place.address", ans.Source)
	assert.Contains(t, ans.Text, "N-12, Outer Circle, Connaught Place")
	assert.Equal(t, CountTokens(ans.Text), ans.TokenCount)

	summary, err := b.Outlet("delhi", "connaught_place", "")
	require.NoError(t, err)
	assert.Equal(t, "delhi.connaught_place", summary.Source)
	assert.Contains(t, summary.Text, `"facilities_summary": "4 facilities available"`)
	assert.Contains(t, summary.Text, `"available_info"`)
}

func TestOutlet_NotFound(t *testing.T) {
	b := loadBase(t)

	_, err := b.Outlet("delhi", "whitefield", "")
	assert.ErrorIs(t, err, ErrOutletNotFound)

	_, err = b.Outlet("pune", "baner", "")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestMenu(t *testing.T) {
	b := loadBase(t)

	desserts := b.Menu("desserts")
	assert.Equal(t, "menu.desserts", desserts.Source)
	assert.Contains(t, desserts.Text, "Angori Gulab Jamun")

	summary := b.Menu("")
	assert.Equal(t, "menu", summary.Source)
	assert.Contains(t, summary.Text, `"categories"`)
	assert.Contains(t, summary.Text, `"gluten_free"`)

	unknown := b.Menu("sushi")
	assert.Equal(t, "menu", unknown.Source)
}

func TestQuery_Routing(t *testing.T) {
	b := loadBase(t, WithPredefined(staticAnswers{"jain food": "Yes, Jain food is available."}))

	tests := []struct {
		name       string
		req        QueryRequest
		wantSource string
		wantText   string
	}{
		{"predefined first", QueryRequest{Query: "Can I get JAIN FOOD?"}, SourcePredefined, "Yes, Jain food is available."},
		{"menu category", QueryRequest{Query: "what desserts are on the menu"}, "menu.desserts", "Phirnee"},
		{"menu overview", QueryRequest{Query: "tell me about the food", City: "delhi", Outlet: "saket"}, "menu", `"categories"`},
		{"outlet info", QueryRequest{Query: "what are the parking options", City: "Delhi", Outlet: "Saket"}, "delhi.saket.parking", "Mall Parking Available"},
		{"outlet hours", QueryRequest{Query: "opening hours?", City: "bangalore", Outlet: "JP Nagar"}, "bangalore.jp_nagar.hours", "6:30 PM - 11:00 PM"},
		{"outlet summary", QueryRequest{Query: "tell me about it", City: "bangalore", Outlet: "whitefield"}, "bangalore.whitefield", "Phoenix Marketcity"},
		{"unknown outlet", QueryRequest{Query: "hours", City: "delhi", Outlet: "atlantis"}, SourceError, "Could not find information about this outlet"},
		{"city overview", QueryRequest{Query: "which outlets", City: "Delhi"}, "delhi", "There are 4 Barbeque Nation outlets in Delhi"},
		{"unknown city", QueryRequest{Query: "which outlets", City: "Pune"}, SourceError, "Could not find information about Pune"},
		{"general", QueryRequest{Query: "hello"}, SourceGeneral, "Try asking about specific cities"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ans := b.Query(tt.req)
			assert.Equal(t, tt.wantSource, ans.Source)
			assert.Contains(t, ans.Text, tt.wantText)
			assert.Positive(t, ans.TokenCount)
		})
	}
}

func TestQuery_RespectsBudget(t *testing.T) {
	small := loadBase(t, WithMaxTokens(40)).Menu("non_veg_main_course")
	full := loadBase(t).Menu("non_veg_main_course")

	assert.Less(t, len(small.Text), len(full.Text))
	assert.Contains(t, small.Text, `"menu_category": "non_veg_main_course"`)
}

func TestAnswers_StayWithinBudget(t *testing.T) {
	for _, limit := range []int{30, 50, 80} {
		b := loadBase(t, WithMaxTokens(limit))

		for _, city := range b.Cities() {
			outlets, err := b.Outlets(city)
			require.NoError(t, err)
			for _, outlet := range outlets {
				for _, info := range append([]string{""}, outletInfoTypes...) {
					ans, err := b.Outlet(city, outlet, info)
					require.NoError(t, err)
					assert.LessOrEqual(t, ans.TokenCount, limit, "%s/%s %q", city, outlet, info)
				}
			}
		}

		assert.LessOrEqual(t, b.Menu("").TokenCount, limit)
		for _, category := range b.MenuCategories() {
			assert.LessOrEqual(t, b.Menu(category).TokenCount, limit, category)
		}
		assert.LessOrEqual(t, b.Query(QueryRequest{Query: "hello"}).TokenCount, limit)
	}
}
