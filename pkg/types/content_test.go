package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentEntryValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   ContentEntry
		wantErr error
	}{
		{name: "text entry", entry: ContentEntry{Section: "home", Element: "title", Kind: KindText, Value: "Hola"}},
		{name: "json entry", entry: ContentEntry{Section: "contact", Element: "locations", Kind: KindJSON, Value: `[]`}},
		{name: "text that looks like json stays valid", entry: ContentEntry{Section: "contact", Element: "ext", Kind: KindText, Value: "123"}},
		{name: "missing section", entry: ContentEntry{Element: "title", Kind: KindText}, wantErr: ErrInvalidSection},
		{name: "missing element", entry: ContentEntry{Section: "home", Kind: KindText}, wantErr: ErrInvalidElement},
		{name: "unknown kind", entry: ContentEntry{Section: "home", Element: "title", Kind: "yaml"}, wantErr: ErrInvalidKind},
		{name: "json kind with invalid document", entry: ContentEntry{Section: "home", Element: "title", Kind: KindJSON, Value: "{"}, wantErr: ErrInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestContentEntryNormalize(t *testing.T) {
	e := ContentEntry{Section: "home", Element: "title"}
	e.Normalize()
	assert.Equal(t, KindText, e.Kind)

	e = ContentEntry{Kind: KindJSON}
	e.Normalize()
	assert.Equal(t, KindJSON, e.Kind)
}
