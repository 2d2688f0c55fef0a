// Package admin holds the editing services behind the admin panel. Every
// submission is validated against a field schema before it reaches the
// store, and every successful write invalidates the cached reads of the
// entity it touched.
package admin

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// FieldKind decides how a field is checked and coerced.
type FieldKind string

// Field kinds.
const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldURL      FieldKind = "url"
	FieldPrice    FieldKind = "price"
)

// Field is one input of a form.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	// Message replaces the default required message.
	Message string
}

// Schema is an ordered list of fields.
type Schema struct {
	Fields []Field
}

// ValidationError carries one message per failing field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Values is validated form input. Text fields are trimmed; price fields
// are parsed.
type Values struct {
	text   map[string]string
	prices map[string]types.Price
}

// String returns a field's trimmed text.
func (v Values) String(name string) string { return v.text[name] }

// Price returns a parsed price field.
func (v Values) Price(name string) types.Price { return v.prices[name] }

// Map returns the text of every schema field.
func (v Values) Map() map[string]string {
	out := make(map[string]string, len(v.text))
	for k, s := range v.text {
		out[k] = s
	}
	return out
}

// Names returns the field names in schema order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Validate checks input against the schema. Keys without a field are
// dropped. All failing fields are reported together.
func (s Schema) Validate(input map[string]string) (Values, error) {
	vals := Values{text: map[string]string{}, prices: map[string]types.Price{}}
	errs := map[string]string{}

	for _, f := range s.Fields {
		raw := strings.TrimSpace(input[f.Name])
		if raw == "" {
			if f.Required {
				errs[f.Name] = f.requiredMessage()
			}
			vals.text[f.Name] = ""
			continue
		}

		switch f.Kind {
		case FieldURL:
			if !validURL(raw) {
				errs[f.Name] = "Debe ser una URL válida"
				continue
			}
		case FieldPrice:
			p, err := types.ParsePrice(raw)
			if err != nil {
				errs[f.Name] = "El precio debe ser un número positivo"
				continue
			}
			vals.prices[f.Name] = p
			raw = p.String()
		}
		vals.text[f.Name] = raw
	}

	if len(errs) > 0 {
		return Values{}, &ValidationError{Fields: errs}
	}
	return vals, nil
}

func (f Field) requiredMessage() string {
	if f.Message != "" {
		return f.Message
	}
	label := f.Label
	if label == "" {
		label = f.Name
	}
	return fmt.Sprintf("%s es requerido", label)
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "mailto")
}
