// Package record provides the schema-agnostic record model shared by the
// transformation pipeline. A Record is an ordered list of named fields, the
// same role bson.D plays for MongoDB documents: field order is preserved
// across JSON round-trips because target systems may be order-sensitive.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a single named value inside a Record.
type Field struct {
	Name  string
	Value interface{}
}

// Record is an ordered set of fields. Values are the shapes produced by
// encoding/json: string, float64, bool, nil, []interface{} and
// map[string]interface{} for nested objects.
type Record []Field

// Get returns the value of the named field and whether the field exists.
// A field holding an explicit null is present with a nil value; a missing
// field reports ok == false.
func (r Record) Get(name string) (interface{}, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Set replaces the named field in place, or appends it if absent.
func (r *Record) Set(name string, value interface{}) {
	for i := range *r {
		if (*r)[i].Name == name {
			(*r)[i].Value = value
			return
		}
	}
	*r = append(*r, Field{Name: name, Value: value})
}

// Has reports whether the named field exists.
func (r Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the field names in record order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// MarshalJSON encodes the record as a JSON object with fields in record
// order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("error encoding field %q: %w", f.Name, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving the order of its keys.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record must be a JSON object")
	}

	out := Record{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in record", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("error decoding field %q: %w", key, err)
		}
		var value interface{}
		if err := json.Unmarshal(raw, &value); err != nil {
			return fmt.Errorf("error decoding field %q: %w", key, err)
		}
		out = append(out, Field{Name: key, Value: value})
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = out
	return nil
}
