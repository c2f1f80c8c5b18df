package catalog

import (
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"list":     list,
	"humanize": humanize,
	"is":       strings.EqualFold,
}

// list joins items as "a, b, and c" using conj before the last item.
func list(items []string, conj string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " " + conj + " " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", " + conj + " " + items[len(items)-1]
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
