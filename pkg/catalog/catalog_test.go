package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hostline/pkg/domain"
)

func defaultCatalog(t *testing.T, opts ...Option) *Catalog {
	t.Helper()
	c, err := Default(nil, opts...)
	require.NoError(t, err)
	return c
}

func TestDefault_CoversEveryState(t *testing.T) {
	c := defaultCatalog(t)
	templates := c.Templates()
	require.Len(t, templates, len(domain.AllStates()))
	for i, s := range domain.AllStates() {
		assert.Equal(t, s, templates[i].State)
	}
}

func TestRender_EveryStateWithEmptySlots(t *testing.T) {
	c := defaultCatalog(t)
	for _, s := range domain.AllStates() {
		out, err := c.Render(s, domain.SlotContext{})
		require.NoError(t, err, "state %s", s)
		assert.True(t, strings.HasPrefix(out, "You are a voice assistant for Barbeque Nation restaurants."), "state %s", s)
		assert.NotContains(t, out, "<no value>", "state %s", s)
	}
}

func TestRender_NewReservationAsksForDateFirst(t *testing.T) {
	c := defaultCatalog(t)
	out, err := c.Render(domain.StateNewReservation, domain.SlotContext{"city": "Delhi", "outlet": "Connaught Place"})
	require.NoError(t, err)

	assert.Contains(t, out, "What date would you like to make your reservation for?")
	assert.NotContains(t, out, "confirm the reservation details")
	assert.NotContains(t, out, "How many guests")
	assert.Contains(t, out, "at the Connaught Place outlet in Delhi")
}

func TestRender_NewReservationAsksNextMissingItem(t *testing.T) {
	c := defaultCatalog(t)
	out, err := c.Render(domain.StateNewReservation, domain.SlotContext{
		"date": "2026-10-20", "time": "19:00",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "How many guests will be joining you?")
	assert.NotContains(t, out, "What date would you like")
	assert.Contains(t, out, "Date: 2026-10-20")
	assert.Contains(t, out, "Time: 19:00")
}

func TestRender_NewReservationConfirmsWhenComplete(t *testing.T) {
	c := defaultCatalog(t)
	out, err := c.Render(domain.StateNewReservation, domain.SlotContext{
		"date": "2026-10-20", "time": "19:00", "party_size": 4,
		"customer_name": "Asha", "phone_number": "9876543210",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "confirm the reservation details")
	assert.Contains(t, out, "Party size: 4")
	assert.NotContains(t, out, "Ask:")
}

func TestRender_CityCollectionBranches(t *testing.T) {
	c := defaultCatalog(t)

	empty, err := c.Render(domain.StateCityCollection, nil)
	require.NoError(t, err)
	assert.Contains(t, empty, "You need to collect which city (Delhi or Bangalore)")
	assert.Contains(t, empty, "For Bangalore, outlets are: Indiranagar, JP Nagar, Electronic City, and Koramangala.")

	set, err := c.Render(domain.StateCityCollection, domain.SlotContext{"city": "Delhi"})
	require.NoError(t, err)
	assert.Contains(t, set, `"Great! Which Delhi outlet are you interested in?"`)
	assert.NotContains(t, set, "You need to collect which city")
}

func TestRender_CancelConfirmationIsCaseInsensitive(t *testing.T) {
	c := defaultCatalog(t)
	out, err := c.Render(domain.StateCancelReservation, domain.SlotContext{
		"city": "Delhi", "outlet": "Saket", "customer_name": "Ravi",
		"reservation_date": "2026-10-21", "confirmation": "Yes",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "I've cancelled your reservation for 2026-10-21 at our Saket outlet in Delhi.")
}

func TestRender_ModifyAsksForNewValue(t *testing.T) {
	c := defaultCatalog(t)
	out, err := c.Render(domain.StateModifyReservation, domain.SlotContext{
		"customer_name": "Ravi", "reservation_date": "2026-10-21", "modification_type": "party_size",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "They want to modify the party size.")
	assert.Contains(t, out, "Ask for the new number of guests.")
	assert.NotContains(t, out, "Ask for the new date.")
}

func TestRender_IsPure(t *testing.T) {
	c := defaultCatalog(t)
	slots := domain.SlotContext{"city": "Bangalore", "outlet": "Indiranagar", "date": "2026-10-20"}

	first, err := c.Render(domain.StateNewReservation, slots)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := c.Render(domain.StateNewReservation, slots)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRender_IgnoresUndeclaredSlots(t *testing.T) {
	c := defaultCatalog(t)
	out, err := c.Render(domain.StateGreeting, domain.SlotContext{"city": "Delhi"})
	require.NoError(t, err)
	assert.NotContains(t, out, "Delhi restaurant")
}

func TestRender_UnknownState(t *testing.T) {
	c := defaultCatalog(t)
	_, err := c.Render("dessert", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownState)
}

func TestRenderPlaceholders(t *testing.T) {
	c := defaultCatalog(t)
	out, err := c.RenderPlaceholders(domain.StateNewReservation, "city", "outlet")
	require.NoError(t, err)
	assert.Contains(t, out, "at the {{outlet}} outlet in {{city}}")
	assert.Contains(t, out, "What date would you like to make your reservation for?")
}

func TestWithPersona(t *testing.T) {
	c := defaultCatalog(t, WithPersona(Persona{
		Brand:     "Grill House",
		Assistant: "Host",
		Cities:    []City{{Name: "Pune", Outlets: []string{"Baner"}}},
	}))
	out, err := c.Render(domain.StateGreeting, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "I'm Host, your virtual host.")
	assert.Contains(t, out, "interested in today, Pune?")
}

func TestNew_RejectsUndeclaredReference(t *testing.T) {
	base, err := Builtin()
	require.NoError(t, err)

	bad := Template{State: domain.StateFarewell, Slots: []string{"city"}, Source: "Bye from {{.outlet}}"}
	_, err = New(merge(base, []Template{bad}))

	var refErr *SlotReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "outlet", refErr.Slot)
	assert.Equal(t, "farewell", refErr.Template)
}

func TestNew_RejectsUnknownSlotDeclaration(t *testing.T) {
	_, err := Default([]Template{{State: domain.StateFarewell, Slots: []string{"dessert"}, Source: "Bye"}})

	var refErr *SlotReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "dessert", refErr.Slot)
}

func TestNew_ChecksRootVariableInsideRange(t *testing.T) {
	src := `{{range .persona.Cities}}{{.Name}} {{$.outlet}}{{end}}`
	_, err := Default([]Template{{State: domain.StateFarewell, Slots: []string{"city"}, Source: src}})

	var refErr *SlotReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.Equal(t, "outlet", refErr.Slot)

	ok := Template{State: domain.StateFarewell, Slots: []string{"outlet"}, Source: src}
	_, err = Default([]Template{ok})
	assert.NoError(t, err)
}

func TestNew_RequiresEveryState(t *testing.T) {
	_, err := New([]Template{{State: domain.StateGreeting, Source: "hi"}})
	assert.ErrorContains(t, err, "catalog has no template for: city_collection")
}

func TestNew_RejectsUnknownState(t *testing.T) {
	_, err := Default([]Template{{State: "dessert", Source: "x"}})
	assert.ErrorIs(t, err, domain.ErrUnknownState)
}

func TestList(t *testing.T) {
	assert.Equal(t, "", list(nil, "and"))
	assert.Equal(t, "Delhi", list([]string{"Delhi"}, "or"))
	assert.Equal(t, "Delhi or Bangalore", list([]string{"Delhi", "Bangalore"}, "or"))
	assert.Equal(t, "a, b, and c", list([]string{"a", "b", "c"}, "and"))
}
