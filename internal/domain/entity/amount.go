package entity

import (
	"fmt"
	"math/big"
	"strings"

	"wallet_core/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecimalAmount is an exact fixed-point quantity: mantissa / 10^decimalPlaces.
//
// Values are immutable. Every operation returns a new DecimalAmount and never
// touches the receiver's mantissa. The zero value is 0 at scale 0.
//
// Arithmetic between amounts of different scales rescales the operand with fewer
// decimal places up to the larger scale before combining. That upward rescale is
// lossless and is the only implicit rescale performed.
type DecimalAmount struct {
	mantissa      *big.Int
	decimalPlaces uint8
}

// ZeroAmount returns 0 at the given scale.
func ZeroAmount(scale uint8) DecimalAmount {
	return DecimalAmount{mantissa: new(big.Int), decimalPlaces: scale}
}

// NewDecimalAmount wraps a raw integer amount (e.g. mutez) at the given scale.
// The mantissa is copied.
func NewDecimalAmount(mantissa *big.Int, scale uint8) DecimalAmount {
	m := new(big.Int)
	if mantissa != nil {
		m.Set(mantissa)
	}
	return DecimalAmount{mantissa: m, decimalPlaces: scale}
}

// ParseDecimalAmount parses a human decimal literal such as "12", "-0.5" or "+3.25"
// into an amount at the given scale. A literal with more fractional digits than
// scale allows is rejected, never rounded.
func ParseDecimalAmount(s string, scale uint8) (DecimalAmount, error) {
	raw := s
	if raw == "" {
		return DecimalAmount{}, fmt.Errorf("%w: empty string", ErrMalformedAmount)
	}

	negative := false
	switch raw[0] {
	case '-':
		negative = true
		raw = raw[1:]
	case '+':
		raw = raw[1:]
	}

	intPart, fracPart, hasPoint := strings.Cut(raw, ".")
	if intPart == "" || (hasPoint && fracPart == "") {
		return DecimalAmount{}, fmt.Errorf("%w: %q is not a decimal literal", ErrMalformedAmount, s)
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return DecimalAmount{}, fmt.Errorf("%w: %q contains invalid characters", ErrMalformedAmount, s)
	}
	if len(fracPart) > int(scale) {
		return DecimalAmount{}, fmt.Errorf("%w: %q has %d fractional digits, scale allows %d",
			ErrMalformedAmount, s, len(fracPart), scale)
	}

	digits := intPart + fracPart + strings.Repeat("0", int(scale)-len(fracPart))
	m, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return DecimalAmount{}, fmt.Errorf("%w: %q", ErrMalformedAmount, s)
	}
	if negative {
		m.Neg(m)
	}

	return DecimalAmount{mantissa: m, decimalPlaces: scale}, nil
}

// MustParseDecimalAmount is like ParseDecimalAmount but panics on error.
// Intended for literals in definitions and tests.
func MustParseDecimalAmount(s string, scale uint8) DecimalAmount {
	a, err := ParseDecimalAmount(s, scale)
	if err != nil {
		panic(err)
	}
	return a
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (a DecimalAmount) m() *big.Int {
	if a.mantissa == nil {
		return new(big.Int)
	}
	return a.mantissa
}

// Mantissa returns a copy of the integer mantissa.
func (a DecimalAmount) Mantissa() *big.Int {
	return new(big.Int).Set(a.m())
}

// DecimalPlaces returns the scale.
func (a DecimalAmount) DecimalPlaces() uint8 {
	return a.decimalPlaces
}

// Sign returns -1, 0 or +1.
func (a DecimalAmount) Sign() int {
	return a.m().Sign()
}

// IsZero reports whether the amount is zero at any scale.
func (a DecimalAmount) IsZero() bool {
	return a.Sign() == 0
}

// IsNegative reports whether the amount is below zero.
func (a DecimalAmount) IsNegative() bool {
	return a.Sign() < 0
}

// scaledTo returns the mantissa expressed at scale, which must be >= a.decimalPlaces.
func (a DecimalAmount) scaledTo(scale uint8) *big.Int {
	if scale == a.decimalPlaces {
		return a.m()
	}
	return new(big.Int).Mul(a.m(), utils.Pow10(scale-a.decimalPlaces))
}

func commonScale(a, b DecimalAmount) uint8 {
	if a.decimalPlaces > b.decimalPlaces {
		return a.decimalPlaces
	}
	return b.decimalPlaces
}

// Add returns a + b at the larger of the two scales.
func (a DecimalAmount) Add(b DecimalAmount) DecimalAmount {
	scale := commonScale(a, b)
	sum := new(big.Int).Add(a.scaledTo(scale), b.scaledTo(scale))
	return DecimalAmount{mantissa: sum, decimalPlaces: scale}
}

// Sub returns a - b at the larger of the two scales.
func (a DecimalAmount) Sub(b DecimalAmount) DecimalAmount {
	scale := commonScale(a, b)
	diff := new(big.Int).Sub(a.scaledTo(scale), b.scaledTo(scale))
	return DecimalAmount{mantissa: diff, decimalPlaces: scale}
}

// Mul multiplies by an integer scalar. The scale is unchanged.
func (a DecimalAmount) Mul(k int64) DecimalAmount {
	return a.MulBig(big.NewInt(k))
}

// MulBig multiplies by an arbitrary-precision integer scalar. The scale is unchanged.
func (a DecimalAmount) MulBig(k *big.Int) DecimalAmount {
	if k == nil {
		return ZeroAmount(a.decimalPlaces)
	}
	return DecimalAmount{mantissa: new(big.Int).Mul(a.m(), k), decimalPlaces: a.decimalPlaces}
}

// Div divides by an integer scalar, truncating toward zero at the current scale:
// 1.00 / 3 = 0.33 and -1.00 / 3 = -0.33. A zero divisor yields ErrDivisionByZero.
func (a DecimalAmount) Div(k int64) (DecimalAmount, error) {
	return a.DivBig(big.NewInt(k))
}

// DivBig is Div with an arbitrary-precision divisor.
func (a DecimalAmount) DivBig(k *big.Int) (DecimalAmount, error) {
	if k == nil || k.Sign() == 0 {
		return DecimalAmount{}, fmt.Errorf("%w: cannot divide %s", ErrDivisionByZero, a)
	}
	// big.Int.Quo truncates toward zero, unlike Div which is Euclidean.
	return DecimalAmount{mantissa: new(big.Int).Quo(a.m(), k), decimalPlaces: a.decimalPlaces}, nil
}

// Cmp compares a and b at the larger of their scales and returns -1, 0 or +1.
func (a DecimalAmount) Cmp(b DecimalAmount) int {
	scale := commonScale(a, b)
	return a.scaledTo(scale).Cmp(b.scaledTo(scale))
}

// Equal reports numeric equality, so 1.0 equals 1.00.
func (a DecimalAmount) Equal(b DecimalAmount) bool {
	return a.Cmp(b) == 0
}

// Identical reports equality of both value and scale.
func (a DecimalAmount) Identical(b DecimalAmount) bool {
	return a.decimalPlaces == b.decimalPlaces && a.m().Cmp(b.m()) == 0
}

// LessThan reports a < b.
func (a DecimalAmount) LessThan(b DecimalAmount) bool {
	return a.Cmp(b) < 0
}

// GreaterThan reports a > b.
func (a DecimalAmount) GreaterThan(b DecimalAmount) bool {
	return a.Cmp(b) > 0
}

// Format renders the amount with exactly DecimalPlaces fractional digits.
func (a DecimalAmount) Format() string {
	return utils.FormatBigInt(a.m(), a.decimalPlaces)
}

// String implements fmt.Stringer. Same output as Format.
func (a DecimalAmount) String() string {
	return a.Format()
}

// Compact renders the amount without trailing fractional zeros, for display.
func (a DecimalAmount) Compact() string {
	return utils.TrimFractionZeros(a.Format())
}

// Decimal converts the amount to a shopspring decimal without loss.
func (a DecimalAmount) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(a.m(), -int32(a.decimalPlaces))
}

type decimalAmountJSON struct {
	Mantissa      string `json:"mantissa"`
	DecimalPlaces uint8  `json:"decimalPlaces"`
}

// MarshalJSON encodes the amount as {"mantissa": "<int>", "decimalPlaces": n}.
func (a DecimalAmount) MarshalJSON() ([]byte, error) {
	return json.Marshal(decimalAmountJSON{
		Mantissa:      a.m().String(),
		DecimalPlaces: a.decimalPlaces,
	})
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (a *DecimalAmount) UnmarshalJSON(data []byte) error {
	var raw decimalAmountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedAmount, err)
	}
	m, ok := new(big.Int).SetString(raw.Mantissa, 10)
	if !ok {
		return fmt.Errorf("%w: mantissa %q is not an integer", ErrMalformedAmount, raw.Mantissa)
	}
	*a = DecimalAmount{mantissa: m, decimalPlaces: raw.DecimalPlaces}
	return nil
}
