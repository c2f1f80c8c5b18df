package knowledge

import "bytes"

// Field is one key of an ordered JSON object.
type Field struct {
	Key   string
	Value any
}

// Fields is a JSON object that keeps its key order.
type Fields []Field

// MarshalJSON renders the object with keys in declaration order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := encode(field.Key, false)
		if err != nil {
			return nil, err
		}
		v, err := encode(field.Value, false)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value stored under key.
func (f Fields) Get(key string) (any, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}
