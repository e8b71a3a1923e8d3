package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyTokens are stripped from price cells before parsing. Multi-letter
// tokens come first so "USD" is not left half-removed.
var currencyTokens = []string{"USD", "RM", "$", "€", "£", "₹"}

// PriceParseError is returned when a price cell has non-numeric residue.
type PriceParseError struct {
	Raw     string
	Residue string
}

func (e *PriceParseError) Error() string {
	if e.Residue == "" {
		return fmt.Sprintf("price %q: no digits", e.Raw)
	}
	return fmt.Sprintf("price %q: cannot parse %q", e.Raw, e.Residue)
}

// ParsePrice strips currency symbols, thousands separators and whitespace,
// then parses the remainder as a decimal number.
//
//	"RM 1,200.50" → 1200.5
//	"$0"          → 0
//	"call us"     → *PriceParseError
func ParsePrice(raw string) (float64, error) {
	s := raw
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &PriceParseError{Raw: raw}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &PriceParseError{Raw: raw, Residue: s}
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0, &PriceParseError{Raw: raw, Residue: s}
	}
	return f, nil
}

// FormatPrice renders a parsed price so that ParsePrice reads it back unchanged.
func FormatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// round2 rounds half away from zero at two decimals.
func round2(f float64) float64 {
	out, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return out
}
