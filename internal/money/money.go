// Package money handles amounts as integers in the smallest currency unit
// (paise). Decimal major-unit values exist only at the API boundary; nothing
// in this package touches floating point.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// MinorPerMajor is the number of minor units in one major unit.
const MinorPerMajor = 100

var (
	// ErrInvalidAmount indicates a value that does not parse as a positive
	// decimal amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrAmountTooLarge indicates a value outside the representable range.
	ErrAmountTooLarge = errors.New("amount too large")
)

// ParseMajor converts a decimal major-unit string (e.g. "33.33") into minor
// units. Digits beyond the second decimal place are rounded half away from
// zero. The result must be a positive int64; anything else is rejected.
func ParseMajor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if s[0] == '+' {
		s = s[1:]
	}
	if s == "" || s[0] == '-' {
		return 0, ErrInvalidAmount
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, ErrInvalidAmount
	}

	var major int64
	for _, c := range intPart {
		if c < '0' || c > '9' {
			return 0, ErrInvalidAmount
		}
		d := int64(c - '0')
		if major > (math.MaxInt64-d)/10 {
			return 0, ErrAmountTooLarge
		}
		major = major*10 + d
	}

	var cents, roundDigit int64
	for i, c := range fracPart {
		if c < '0' || c > '9' {
			return 0, ErrInvalidAmount
		}
		switch {
		case i < 2:
			cents = cents*10 + int64(c-'0')
		case i == 2:
			roundDigit = int64(c - '0')
		}
	}
	if len(fracPart) == 1 {
		cents *= 10
	}
	if roundDigit >= 5 {
		cents++
	}

	if major > (math.MaxInt64-cents)/MinorPerMajor {
		return 0, ErrAmountTooLarge
	}
	minor := major*MinorPerMajor + cents
	if minor <= 0 {
		return 0, ErrInvalidAmount
	}
	return minor, nil
}

// FormatMinor renders minor units as a major-unit decimal string with two
// fractional digits, e.g. 3333 -> "33.33".
func FormatMinor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/MinorPerMajor, minor%MinorPerMajor)
}
