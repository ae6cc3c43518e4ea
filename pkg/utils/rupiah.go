package utils

import (
	"math"
	"strconv"
	"strings"
)

// FormatRupiah formats a price in Indonesian Rupiah display format with
// dot thousand separators and no decimals, e.g. 45000 → "Rp 45.000".
func FormatRupiah(amount float64) string {
	negative := amount < 0
	intPart := int64(math.Round(math.Abs(amount)))

	s := strconv.FormatInt(intPart, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	if negative {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}

// ParsePrice extracts a numeric price from the loose formats upstream
// records carry: plain numbers, "12500.50", or display strings like
// "Rp 12.500,50". Returns 0 for anything unparseable.
func ParsePrice(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		return parsePriceString(n)
	default:
		return 0
	}
}

func parsePriceString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	// Plain numeric strings ("12500" or "12500.50") parse as-is.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	// Display strings: strip "Rp", spaces, and dot separators; the comma
	// is the Indonesian decimal mark.
	s = strings.NewReplacer("Rp", "", "rp", "", ".", "", " ", "", " ", "").Replace(s)
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
