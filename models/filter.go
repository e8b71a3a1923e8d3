package models

import (
	"math"
	"strings"
)

// AllValues is the facet selection that places no restriction.
const AllValues = "All"

// PriceRange is an inclusive price window. A NaN bound places no
// restriction on its side.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterConfig is one set of facet selections. Unset fields, empty brand
// lists and "All" facets place no restriction. Treat values as immutable:
// And returns a new config.
type FilterConfig struct {
	Brands      []string    `json:"brands,omitempty"`
	Category    string      `json:"category,omitempty"`
	Subcategory string      `json:"subcategory,omitempty"`
	Marketplace string      `json:"marketplace,omitempty"`
	PriceRange  *PriceRange `json:"price_range,omitempty"`
	MinRating   *float64    `json:"min_rating,omitempty"`
	MinQuantity *int        `json:"min_quantity,omitempty"`

	// set by And when two selections can never hold together
	unsatisfiable bool
}

// IsAll reports whether a facet value places no restriction.
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == AllValues
}

// Unsatisfiable reports whether no row can match the config.
func (f FilterConfig) Unsatisfiable() bool { return f.unsatisfiable }

// And returns the conjunction of two configs. Applying the result is the
// same as applying f and then other, in either order.
func (f FilterConfig) And(other FilterConfig) FilterConfig {
	out := FilterConfig{unsatisfiable: f.unsatisfiable || other.unsatisfiable}

	switch {
	case len(f.Brands) == 0:
		out.Brands = append([]string(nil), other.Brands...)
	case len(other.Brands) == 0:
		out.Brands = append([]string(nil), f.Brands...)
	default:
		keep := make(map[string]struct{}, len(other.Brands))
		for _, b := range other.Brands {
			keep[b] = struct{}{}
		}
		for _, b := range f.Brands {
			if _, ok := keep[b]; ok {
				out.Brands = append(out.Brands, b)
			}
		}
		if len(out.Brands) == 0 {
			out.unsatisfiable = true
		}
	}

	var ok bool
	if out.Category, ok = mergeFacet(f.Category, other.Category); !ok {
		out.unsatisfiable = true
	}
	if out.Subcategory, ok = mergeFacet(f.Subcategory, other.Subcategory); !ok {
		out.unsatisfiable = true
	}
	if out.Marketplace, ok = mergeFacet(f.Marketplace, other.Marketplace); !ok {
		out.unsatisfiable = true
	}

	switch {
	case f.PriceRange == nil && other.PriceRange == nil:
	case f.PriceRange == nil:
		r := *other.PriceRange
		out.PriceRange = &r
	case other.PriceRange == nil:
		r := *f.PriceRange
		out.PriceRange = &r
	default:
		r := PriceRange{
			Min: maxBound(f.PriceRange.Min, other.PriceRange.Min),
			Max: minBound(f.PriceRange.Max, other.PriceRange.Max),
		}
		out.PriceRange = &r
	}

	out.MinRating = maxPtr(f.MinRating, other.MinRating)
	out.MinQuantity = maxPtr(f.MinQuantity, other.MinQuantity)
	return out
}

// mergeFacet compares trimmed values, the way filters are applied.
func mergeFacet(a, b string) (string, bool) {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case IsAll(a):
		return b, true
	case IsAll(b), a == b:
		return a, true
	default:
		return a, false
	}
}

func maxBound(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return max(a, b)
}

func minBound(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return min(a, b)
}

// maxPtr keeps the stricter of two thresholds. nil and NaN mean unset.
func maxPtr[T int | float64](a, b *T) *T {
	if a == nil || math.IsNaN(float64(*a)) {
		a, b = b, a
	}
	if a == nil {
		return nil
	}
	v := *a
	if b != nil && !math.IsNaN(float64(*b)) {
		v = max(v, *b)
	}
	return &v
}
