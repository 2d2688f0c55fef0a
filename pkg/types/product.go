package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Price is an amount in cents. Prices are exact so bucket boundaries such
// as 50.00 and 120.00 compare without rounding surprises.
type Price int64

// ParsePrice parses a decimal amount such as "120", "49.9" or "120.01".
// Negative amounts and more than two fractional digits are rejected.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidPrice)
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (hasFrac && (!isDigits(frac) || len(frac) > 2)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units >= math.MaxInt64/100 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	var cents int64
	switch len(frac) {
	case 1:
		cents = int64(frac[0]-'0') * 10
	case 2:
		cents = int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	}
	return Price(units*100 + cents), nil
}

// PriceFromFloat converts a float amount, rounding to the nearest cent.
func PriceFromFloat(f float64) (Price, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt64/100 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, f)
	}
	return Price(math.Round(f * 100)), nil
}

// Cents returns the amount in cents.
func (p Price) Cents() int64 { return int64(p) }

func (p Price) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the price as a decimal number with two places.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (p *Price) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	v, err := ParsePrice(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return err
		}
		if v, err = PriceFromFloat(f); err != nil {
			return err
		}
	}
	*p = v
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Product is a catalog entry. Weight is a free-text label ("500g", "1 kg")
// and CategoryID is not enforced against the categories table.
type Product struct {
	ProductID   string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       Price     `json:"price"`
	Weight      string    `json:"weight"`
	CategoryID  string    `json:"category_id"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the product before it is written.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
