package knowledge

import (
	"bytes"
	"encoding/json"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"
)

// CountTokens approximates the model token count of s: roughly four
// characters per token, never fewer tokens than words.
func CountTokens(s string) int {
	if s == "" {
		return 0
	}
	byChars := (utf8.RuneCountInString(s) + 3) / 4
	return max(byChars, len(strings.Fields(s)))
}

// TruncateText cuts s so that it fits maxTokens, marking the cut with "...".
func TruncateText(s string, maxTokens int) string {
	if CountTokens(s) <= maxTokens {
		return s
	}
	r := []rune(s)
	n := min(len(r), max(0, (maxTokens-1)*4))
	for n > 0 && CountTokens(string(r[:n])+"...") > maxTokens {
		n -= 4
	}
	return string(r[:max(n, 0)]) + "..."
}

// FormatJSON renders v as indented JSON within maxTokens. Objects keep
// leading keys that fit and truncate the first nested value that does not;
// lists keep leading items and end with "..." when cut.
//
// Truncation sizes values by their compact encoding, so the indented result
// is re-measured and the walk repeated with a smaller allowance until it fits.
func FormatJSON(v any, maxTokens int) string {
	norm := normalize(v)
	s := marshal(norm, true)
	if CountTokens(s) <= maxTokens {
		return s
	}
	for budget := maxTokens; budget >= 0; {
		var out string
		switch t := norm.(type) {
		case Fields:
			out = marshal(truncateFields(t, budget), true)
		case []any:
			out = marshal(truncateList(t, budget), true)
		default:
			return TruncateText(s, maxTokens)
		}
		over := CountTokens(out) - maxTokens
		if over <= 0 {
			return out
		}
		budget -= over
	}
	return TruncateText(s, maxTokens)
}

func truncateFields(f Fields, maxTokens int) Fields {
	out := Fields{}
	remaining := maxTokens
	for _, field := range f {
		prefix := `"` + field.Key + `": `
		need := CountTokens(prefix + marshal(field.Value, false))
		if need < remaining {
			out = append(out, field)
			remaining -= need
			continue
		}
		switch t := field.Value.(type) {
		case Fields:
			out = append(out, Field{Key: field.Key, Value: truncateFields(t, remaining-CountTokens(prefix))})
			return out
		case []any:
			out = append(out, Field{Key: field.Key, Value: truncateList(t, remaining-CountTokens(prefix))})
			return out
		}
	}
	return out
}

func truncateList(items []any, maxTokens int) []any {
	out := []any{}
	remaining := maxTokens
	for _, item := range items {
		need := CountTokens(marshal(item, false)) + 2
		if need < remaining {
			out = append(out, item)
			remaining -= need
			continue
		}
		switch t := item.(type) {
		case Fields:
			out = append(out, truncateFields(t, remaining-2))
		case []any:
			out = append(out, truncateList(t, remaining-2))
		default:
			out = append(out, "...")
		}
		break
	}
	return out
}

// normalize turns maps into key-sorted Fields and slices into []any so the
// truncation walk only deals with three shapes.
func normalize(v any) any {
	switch t := v.(type) {
	case nil, string:
		return v
	case Fields:
		out := make(Fields, len(t))
		for i, field := range t {
			out[i] = Field{Key: field.Key, Value: normalize(field.Value)}
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		out := make(Fields, 0, len(keys))
		for _, k := range keys {
			out = append(out, Field{Key: k, Value: normalize(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())})
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

func marshal(v any, indent bool) string {
	b, err := encode(v, indent)
	if err != nil {
		return ""
	}
	return string(b)
}

func encode(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
