package catalog

// City groups the outlets of one city as the assistant names them.
type City struct {
	Name    string
	Outlets []string
}

// Persona is the brand voice shared by every template under the persona key.
type Persona struct {
	Brand     string
	Assistant string
	Cities    []City
}

// CityNames lists the city names in order.
func (p Persona) CityNames() []string {
	names := make([]string, len(p.Cities))
	for i, c := range p.Cities {
		names[i] = c.Name
	}
	return names
}

// DefaultPersona is used when no knowledge base is attached.
func DefaultPersona() Persona {
	return Persona{
		Brand:     "Barbeque Nation",
		Assistant: "BBQ Assistant",
		Cities: []City{
			{Name: "Delhi", Outlets: []string{"Connaught Place", "Vasant Kunj", "Janakpuri"}},
			{Name: "Bangalore", Outlets: []string{"Indiranagar", "JP Nagar", "Electronic City", "Koramangala"}},
		},
	}
}
