package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ListItem is one object of a list-valued content element such as the
// store locations. It serializes as a flat JSON object: {"id": ..., field: value}.
type ListItem struct {
	ID     string
	Fields map[string]string
}

// Field returns the named field or the empty string.
func (li ListItem) Field(name string) string {
	return li.Fields[name]
}

// MarshalJSON writes the id first followed by the fields in name order.
func (li ListItem) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"id":`)
	id, err := json.Marshal(li.ID)
	if err != nil {
		return nil, err
	}
	buf.Write(id)

	names := make([]string, 0, len(li.Fields))
	for name := range li.Fields {
		if name != "id" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(li.Fields[name])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object. Older rows carry numeric ids, and
// scalar field values that are not strings are kept in their JSON text form.
func (li *ListItem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	item := ListItem{Fields: make(map[string]string, len(raw))}
	for k, v := range raw {
		s, err := scalarString(v)
		if err != nil {
			return fmt.Errorf("list item field %q: %w", k, err)
		}
		if k == "id" {
			item.ID = s
			continue
		}
		item.Fields[k] = s
	}
	*li = item
	return nil
}

func scalarString(v json.RawMessage) (string, error) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return "", nil
	}
	switch v[0] {
	case '"':
		var s string
		err := json.Unmarshal(v, &s)
		return s, err
	case '{', '[':
		return "", ErrInvalidData
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10), nil
		}
		return n.String(), nil
	}
	return string(v), nil
}
