package types

import (
	"encoding/json"
	"time"
)

// ContentKind tags how an entry's value is stored.
type ContentKind string

// Content kinds. Rows written without a kind are read as KindText.
const (
	KindText ContentKind = "text"
	KindJSON ContentKind = "json"
)

// ContentEntry is one (section, element) value of the site content table.
type ContentEntry struct {
	Section   string      `json:"section"`
	Element   string      `json:"element"`
	Kind      ContentKind `json:"kind"`
	Value     string      `json:"content"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Normalize fills in the default kind for untagged entries.
func (e *ContentEntry) Normalize() {
	if e.Kind == "" {
		e.Kind = KindText
	}
}

// Validate checks the entry before it is written. A json entry must hold a
// syntactically valid JSON document.
func (e *ContentEntry) Validate() error {
	if e.Section == "" {
		return ErrInvalidSection
	}
	if e.Element == "" {
		return ErrInvalidElement
	}
	switch e.Kind {
	case KindText:
	case KindJSON:
		if !json.Valid([]byte(e.Value)) {
			return ErrInvalidData
		}
	default:
		return ErrInvalidKind
	}
	return nil
}
