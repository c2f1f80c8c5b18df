/*
Package catalog renders the prompt the assistant speaks in each state.

Every state owns one text/template. A template declares the slots it reads;
at render time each declared slot is bound to its value, or to the empty
string when unset, so templates branch on {{if .date}} to switch between the
"please provide X" wording and the confirmation wording. References to
anything other than a declared slot or the reserved persona field are
rejected when the catalog is built, never at render time.

# Overrides

The embedded templates can be replaced per state from a directory of
markdown files. The frontmatter carries state, name and slots; the body is
the template source:

	---
	state: farewell
	slots: [city, outlet]
	---
	{{template "intro" .}}
	Goodbye from {{.outlet}}!
*/
package catalog
