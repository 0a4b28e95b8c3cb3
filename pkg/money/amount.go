package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Digits is the number of fractional digits carried by every Amount.
// E.g., "3.1416" = 31416 raw units.
const Digits = 4

// scale is the constant denominator for the fractional part (10^Digits).
const scale uint64 = 10_000

// MaxUnits is the largest whole-unit value an Amount can represent.
const MaxUnits = math.MaxUint64 / scale

var (
	// ErrFormat reports a string that is not a non-negative decimal
	// with at most Digits fractional digits.
	ErrFormat = errors.New("money: invalid decimal format")
	// ErrOverflow reports a value outside the representable range.
	ErrOverflow = errors.New("money: amount overflow")
	// ErrInsufficient reports a subtraction that would go negative.
	ErrInsufficient = errors.New("money: insufficient value")
)

// Amount is an exact, unsigned monetary quantity scaled by 10^Digits.
// The zero value is 0.0000. No float64 is involved at any stage.
type Amount uint64

// FromUnits builds an Amount from a whole number of units.
func FromUnits(units uint64) (Amount, error) {
	if units > MaxUnits {
		return 0, fmt.Errorf("%w: %d units", ErrOverflow, units)
	}
	return Amount(units * scale), nil
}

// Parse converts a decimal string into an Amount.
// It accepts "30", "30.", "3.1416" and rejects negative values, malformed
// input and anything with more than Digits fractional digits. There is no
// rounding: extra precision is a format error, not a hint.
func Parse(s string) (Amount, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrFormat)
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot+1:]
	}

	if intPart == "" || !allDigits(intPart) {
		return 0, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	if !allDigits(fracPart) {
		return 0, fmt.Errorf("%w: %q", ErrFormat, s)
	}
	if len(fracPart) > Digits {
		return 0, fmt.Errorf("%w: %q has more than %d fractional digits", ErrFormat, s, Digits)
	}

	units, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		// All-digit strings only fail ParseUint on uint64 range overflow.
		return 0, fmt.Errorf("%w: %q", ErrOverflow, s)
	}

	var frac uint64
	if fracPart != "" {
		frac, err = strconv.ParseUint(fracPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrFormat, s)
		}
		// Pad missing trailing digits: "3.14" -> 3.1400.
		for i := len(fracPart); i < Digits; i++ {
			frac *= 10
		}
	}

	if units > MaxUnits || (units == MaxUnits && frac > math.MaxUint64-units*scale) {
		return 0, fmt.Errorf("%w: %q", ErrOverflow, s)
	}

	return Amount(units*scale + frac), nil
}

// CheckedAdd returns a+b or ErrOverflow if the sum is not representable.
func (a Amount) CheckedAdd(b Amount) (Amount, error) {
	if uint64(a) > math.MaxUint64-uint64(b) {
		return 0, fmt.Errorf("%w: %s + %s", ErrOverflow, a, b)
	}
	return a + b, nil
}

// CheckedSub returns a-b or ErrInsufficient if b exceeds a.
func (a Amount) CheckedSub(b Amount) (Amount, error) {
	if b > a {
		return 0, fmt.Errorf("%w: %s - %s", ErrInsufficient, a, b)
	}
	return a - b, nil
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a == 0 }

// String renders the amount with exactly Digits fractional digits.
// Parse(a.String()) always round-trips to the same value.
func (a Amount) String() string {
	return fmt.Sprintf("%d.%0*d", uint64(a)/scale, Digits, uint64(a)%scale)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
