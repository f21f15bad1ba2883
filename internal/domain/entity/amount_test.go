package entity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDecimalAmount(t *testing.T) {
	for name, tc := range map[string]struct {
		input    string
		scale    uint8
		mantissa int64
	}{
		"integer":            {input: "10", scale: 6, mantissa: 10_000_000},
		"fraction":           {input: "1.5", scale: 2, mantissa: 150},
		"full scale":         {input: "0.000001", scale: 6, mantissa: 1},
		"negative":           {input: "-2.25", scale: 2, mantissa: -225},
		"explicit plus":      {input: "+3", scale: 0, mantissa: 3},
		"leading zeros":      {input: "007.10", scale: 2, mantissa: 710},
		"negative zero":      {input: "-0.00", scale: 2, mantissa: 0},
		"scale zero integer": {input: "42", scale: 0, mantissa: 42},
	} {
		t.Run(name, func(t *testing.T) {
			a, err := ParseDecimalAmount(tc.input, tc.scale)
			require.NoError(t, err)
			require.Equal(t, tc.scale, a.DecimalPlaces())
			require.Zero(t, a.Mantissa().Cmp(big.NewInt(tc.mantissa)))
		})
	}
}

func TestParseDecimalAmountMalformed(t *testing.T) {
	for name, input := range map[string]string{
		"empty":             "",
		"sign only":         "-",
		"letters":           "12a",
		"two points":        "1.2.3",
		"trailing point":    "1.",
		"leading point":     ".5",
		"exponent":          "1e6",
		"too many decimals": "1.0000001",
		"whitespace":        " 1",
		"comma":             "1,5",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDecimalAmount(input, 6)
			require.ErrorIs(t, err, ErrMalformedAmount)
		})
	}
}

func TestDecimalAmountFormatRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		input string
		scale uint8
	}{
		{"10.000000", 6},
		{"0.05", 2},
		{"-1.50", 2},
		{"123456789012345678901234567890.123456789012345678", 18},
		{"7", 0},
		{"0.000", 3},
	} {
		a, err := ParseDecimalAmount(tc.input, tc.scale)
		require.NoError(t, err)
		require.Equal(t, tc.input, a.Format())
		require.Equal(t, tc.input, a.String())
	}
}

func TestDecimalAmountFormatPadsToScale(t *testing.T) {
	a := MustParseDecimalAmount("10", 6)
	require.Equal(t, "10.000000", a.Format())
	require.Equal(t, "10", a.Compact())

	require.Equal(t, "0.00", ZeroAmount(2).Format())
	require.Equal(t, "0", DecimalAmount{}.Format())
}

func TestDecimalAmountAddSubSameScale(t *testing.T) {
	a := MustParseDecimalAmount("12.345678", 6)
	b := MustParseDecimalAmount("-0.000009", 6)

	sum := a.Add(b)
	require.Equal(t, "12.345669", sum.Format())

	back := sum.Sub(b)
	require.True(t, back.Identical(a))
}

func TestDecimalAmountRescaleOnAdd(t *testing.T) {
	one := NewDecimalAmount(big.NewInt(1), 0)
	fiveHundredths := NewDecimalAmount(big.NewInt(5), 2)

	sum := one.Add(fiveHundredths)
	require.True(t, sum.Identical(NewDecimalAmount(big.NewInt(105), 2)))
	require.Equal(t, "1.05", sum.Format())

	// commutative, same resulting scale
	require.True(t, fiveHundredths.Add(one).Identical(sum))

	diff := one.Sub(fiveHundredths)
	require.Equal(t, "0.95", diff.Format())
}

func TestDecimalAmountZeroIsAdditiveIdentity(t *testing.T) {
	ten := MustParseDecimalAmount("10", 6)
	require.True(t, ZeroAmount(6).Add(ten).Identical(ten))
	require.True(t, ZeroAmount(6).Add(ten).Equal(ten))
}

func TestDecimalAmountOperandsAreNotMutated(t *testing.T) {
	a := MustParseDecimalAmount("1.5", 1)
	b := MustParseDecimalAmount("2.25", 2)

	_ = a.Add(b)
	_ = a.Sub(b)
	_ = a.Mul(7)
	_, _ = a.Div(3)

	require.Equal(t, "1.5", a.Format())
	require.Equal(t, "2.25", b.Format())

	m := a.Mantissa()
	m.SetInt64(999)
	require.Equal(t, "1.5", a.Format())
}

func TestDecimalAmountMul(t *testing.T) {
	a := MustParseDecimalAmount("1.25", 2)
	require.Equal(t, "3.75", a.Mul(3).Format())
	require.Equal(t, "-2.50", a.Mul(-2).Format())
	require.Equal(t, "0.00", a.MulBig(nil).Format())
}

func TestDecimalAmountDivTruncatesTowardZero(t *testing.T) {
	for name, tc := range map[string]struct {
		input    string
		divisor  int64
		expected string
	}{
		"exact":             {input: "1.00", divisor: 4, expected: "0.25"},
		"positive truncate": {input: "1.00", divisor: 3, expected: "0.33"},
		"two thirds":        {input: "2.00", divisor: 3, expected: "0.66"},
		"negative truncate": {input: "-1.00", divisor: 3, expected: "-0.33"},
		"negative divisor":  {input: "2.00", divisor: -3, expected: "-0.66"},
		"below resolution":  {input: "0.01", divisor: 2, expected: "0.00"},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := MustParseDecimalAmount(tc.input, 2).Div(tc.divisor)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got.Format())
			require.Equal(t, uint8(2), got.DecimalPlaces())
		})
	}
}

func TestDecimalAmountDivByZero(t *testing.T) {
	_, err := MustParseDecimalAmount("1", 2).Div(0)
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = MustParseDecimalAmount("1", 2).DivBig(nil)
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestDecimalAmountCompareAcrossScales(t *testing.T) {
	a := MustParseDecimalAmount("1.5", 1)
	b := MustParseDecimalAmount("1.50", 2)
	c := MustParseDecimalAmount("1.49", 2)

	require.True(t, a.Equal(b))
	require.False(t, a.Identical(b))
	require.Equal(t, 0, a.Cmp(b))
	require.True(t, c.LessThan(a))
	require.True(t, a.GreaterThan(c))

	// raw mantissas 15 < 149 would give the wrong answer
	require.Equal(t, 1, a.Cmp(c))
}

func TestDecimalAmountNegative(t *testing.T) {
	a := MustParseDecimalAmount("1", 6).Sub(MustParseDecimalAmount("3", 6))
	require.True(t, a.IsNegative())
	require.Equal(t, -1, a.Sign())
	require.Equal(t, "-2.000000", a.Format())
}

func TestDecimalAmountDecimal(t *testing.T) {
	a := MustParseDecimalAmount("12.340", 3)
	require.Equal(t, "12.34", a.Decimal().String())
}

func TestDecimalAmountJSON(t *testing.T) {
	a := MustParseDecimalAmount("-0.000123", 6)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	require.JSONEq(t, `{"mantissa":"-123","decimalPlaces":6}`, string(data))

	var decoded DecimalAmount
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, decoded.Identical(a))

	require.Error(t, json.Unmarshal([]byte(`{"mantissa":"1.5","decimalPlaces":1}`), &decoded))
}
