// Package content reads and writes site content sections. A section is a
// map from element name to a tagged Value; the tag decides how the stored
// string is interpreted, so no value is ever reparsed on a guess.
package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// Value errors.
var (
	ErrNotJSON = errors.New("content value is text, not json")
	ErrDecode  = errors.New("decoding content value")
)

// Value is one element's content with its kind. The zero Value is empty text.
type Value struct {
	kind types.ContentKind
	raw  string
}

// Text returns a text value. The string is stored verbatim even when it
// looks like JSON.
func Text(s string) Value {
	return Value{kind: types.KindText, raw: s}
}

// JSON serializes v and tags the result as json.
func JSON(v any) (Value, error) {
	if raw, ok := v.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return Value{}, fmt.Errorf("%w: invalid json document", types.ErrInvalidData)
		}
		return Value{kind: types.KindJSON, raw: string(compact(raw))}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	return Value{kind: types.KindJSON, raw: string(data)}, nil
}

// MustJSON is JSON for values known to serialize, such as literals.
func MustJSON(v any) Value {
	val, err := JSON(v)
	if err != nil {
		panic(err)
	}
	return val
}

// ValueOf keeps strings as text and serializes everything else.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case string:
		return Text(x), nil
	default:
		return JSON(v)
	}
}

// FromEntry rebuilds the value stored in a table row.
func FromEntry(e *types.ContentEntry) Value {
	kind := e.Kind
	if kind == "" {
		kind = types.KindText
	}
	return Value{kind: kind, raw: e.Value}
}

// Kind returns the value's tag.
func (v Value) Kind() types.ContentKind {
	if v.kind == "" {
		return types.KindText
	}
	return v.kind
}

// String returns the stored form: the text itself, or the JSON document.
func (v Value) String() string { return v.raw }

// Decode unmarshals a json value into dst. A text value decodes only into
// a *string.
func (v Value) Decode(dst any) error {
	if v.Kind() == types.KindText {
		if s, ok := dst.(*string); ok {
			*s = v.raw
			return nil
		}
		return ErrNotJSON
	}
	if err := json.Unmarshal([]byte(v.raw), dst); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}

// Interface returns the text as a string or the decoded JSON document.
func (v Value) Interface() (any, error) {
	if v.Kind() == types.KindText {
		return v.raw, nil
	}
	var out any
	if err := v.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Equal reports whether both values have the same kind and content. JSON
// values compare by document, so formatting differences do not matter.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}
	if v.Kind() == types.KindText || v.raw == other.raw {
		return v.raw == other.raw
	}
	a, err := v.Interface()
	if err != nil {
		return false
	}
	b, err := other.Interface()
	if err != nil {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// MarshalJSON renders text as a JSON string and json values as the
// document itself.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind() == types.KindText {
		return json.Marshal(v.raw)
	}
	return []byte(v.raw), nil
}

// UnmarshalJSON is the inverse of MarshalJSON: a JSON string becomes text
// and any other document becomes a json value.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	if !json.Valid(data) {
		return fmt.Errorf("%w: invalid json document", types.ErrInvalidData)
	}
	*v = Value{kind: types.KindJSON, raw: string(compact(data))}
	return nil
}

func compact(data []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return data
	}
	return buf.Bytes()
}
