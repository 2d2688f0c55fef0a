// Package catalog filters the product list shown on the storefront. It
// loads the whole product set and applies up to four independent
// predicates combined with AND.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/storefront/pkg/types"
)

// ErrInvalidRange is returned for an unknown price or size bucket name.
var ErrInvalidRange = errors.New("invalid filter range")

// PriceRange is a price bucket.
type PriceRange string

// Price buckets. Low is up to 50.00, medium above 50.00 up to 120.00 and
// high above 120.00.
const (
	PriceAll    PriceRange = "all"
	PriceLow    PriceRange = "low"
	PriceMedium PriceRange = "medium"
	PriceHigh   PriceRange = "high"
)

// Bucket limits in cents.
const (
	lowMax    types.Price = 5000
	mediumMax types.Price = 12000
)

// SizeRange is a size bucket derived from the weight label.
type SizeRange string

// Size buckets. SizeNone is what Classify returns for labels that fall in no
// bucket; it is not a valid filter.
const (
	SizeAll    SizeRange = "all"
	SizeSmall  SizeRange = "small"
	SizeMedium SizeRange = "medium"
	SizeLarge  SizeRange = "large"
	SizeNone   SizeRange = ""
)

// Filter selects products. Zero fields do not filter.
type Filter struct {
	Search     string
	CategoryID string
	Price      PriceRange
	Size       SizeRange
}

// ParsePriceRange accepts all, low, medium and high. Empty means all.
func ParsePriceRange(s string) (PriceRange, error) {
	switch r := PriceRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "", PriceAll:
		return PriceAll, nil
	case PriceLow, PriceMedium, PriceHigh:
		return r, nil
	default:
		return "", fmt.Errorf("%w: price %q", ErrInvalidRange, s)
	}
}

// ParseSizeRange accepts all, small, medium and large. Empty means all.
func ParseSizeRange(s string) (SizeRange, error) {
	switch r := SizeRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "", SizeAll:
		return SizeAll, nil
	case SizeSmall, SizeMedium, SizeLarge:
		return r, nil
	default:
		return "", fmt.Errorf("%w: size %q", ErrInvalidRange, s)
	}
}

// PriceBucket returns the bucket a price falls in.
func PriceBucket(p types.Price) PriceRange {
	switch {
	case p <= lowMax:
		return PriceLow
	case p <= mediumMax:
		return PriceMedium
	default:
		return PriceHigh
	}
}

// Classify maps a weight label to its size bucket by substring: "200" or
// "400" is small, "500" is medium, "1kg" or "1 kg" is large. Labels are
// checked in that order and anything else, "250g" or "750g" for example,
// is SizeNone.
func Classify(weight string) SizeRange {
	w := strings.ToLower(weight)
	switch {
	case strings.Contains(w, "200") || strings.Contains(w, "400"):
		return SizeSmall
	case strings.Contains(w, "500"):
		return SizeMedium
	case strings.Contains(w, "1kg") || strings.Contains(w, "1 kg"):
		return SizeLarge
	default:
		return SizeNone
	}
}

// inSize tests each bucket's substrings independently, so a label can be in
// more than one bucket ("1500g" is medium, "1 kg 200" small and large).
func inSize(weight string, size SizeRange) bool {
	w := strings.ToLower(weight)
	switch size {
	case SizeSmall:
		return strings.Contains(w, "200") || strings.Contains(w, "400")
	case SizeMedium:
		return strings.Contains(w, "500")
	case SizeLarge:
		return strings.Contains(w, "1kg") || strings.Contains(w, "1 kg")
	default:
		return true
	}
}

func inPrice(p types.Price, r PriceRange) bool {
	switch r {
	case PriceLow, PriceMedium, PriceHigh:
		return PriceBucket(p) == r
	default:
		return true
	}
}

// Match reports whether p passes every predicate of f.
func (f Filter) Match(p *types.Product) bool {
	if q := strings.ToLower(f.Search); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	if f.CategoryID != "" && f.CategoryID != "all" && p.CategoryID != f.CategoryID {
		return false
	}
	return inPrice(p.Price, f.Price) && inSize(p.Weight, f.Size)
}

// Apply returns the products matching f in their original order.
func Apply(products []*types.Product, f Filter) []*types.Product {
	results := []*types.Product{}
	for _, p := range products {
		if f.Match(p) {
			results = append(results, p)
		}
	}
	return results
}
