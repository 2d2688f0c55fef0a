package types

import "strings"

// Category groups products in the catalog filter.
type Category struct {
	CategoryID string `json:"id"`
	Name       string `json:"name"`
}

// Validate checks the category before it is written.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidName
	}
	return nil
}
