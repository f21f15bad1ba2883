package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatBigInt(t *testing.T) {
	for name, tc := range map[string]struct {
		amount   *big.Int
		decimals uint8
		expected string
	}{
		"nil":            {amount: nil, decimals: 2, expected: "0.00"},
		"integer":        {amount: big.NewInt(42), decimals: 0, expected: "42"},
		"padded":         {amount: big.NewInt(5), decimals: 2, expected: "0.05"},
		"exact width":    {amount: big.NewInt(123), decimals: 3, expected: "0.123"},
		"with int part":  {amount: big.NewInt(1234500), decimals: 6, expected: "1.234500"},
		"negative":       {amount: big.NewInt(-5), decimals: 2, expected: "-0.05"},
		"negative whole": {amount: big.NewInt(-1000), decimals: 0, expected: "-1000"},
	} {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.expected, FormatBigInt(tc.amount, tc.decimals))
		})
	}
}

func TestTrimFractionZeros(t *testing.T) {
	require.Equal(t, "1.23", TrimFractionZeros("1.2300"))
	require.Equal(t, "10", TrimFractionZeros("10.000"))
	require.Equal(t, "0", TrimFractionZeros("-0.000"))
	require.Equal(t, "100", TrimFractionZeros("100"))
}
