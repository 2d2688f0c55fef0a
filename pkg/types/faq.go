package types

import (
	"strings"
	"time"
)

// FAQ is one question and answer pair.
type FAQ struct {
	FAQID     string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate requires both the question and the answer.
func (f *FAQ) Validate() error {
	if strings.TrimSpace(f.Question) == "" || strings.TrimSpace(f.Answer) == "" {
		return ErrInvalidContent
	}
	return nil
}
