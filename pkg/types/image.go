package types

// Image is a registry row describing one stored object. Name doubles as the
// object key in the bucket.
type Image struct {
	Name    string `json:"name"`
	Section string `json:"section"`
	URL     string `json:"url"`
	AltText string `json:"alt_text"`
}

// Validate checks the required image fields.
func (i *Image) Validate() error {
	if i.Name == "" {
		return ErrInvalidName
	}
	if i.Section == "" {
		return ErrInvalidSection
	}
	if i.URL == "" {
		return ErrInvalidURL
	}
	return nil
}
