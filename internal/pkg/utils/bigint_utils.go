package utils

import (
	"math/big"
	"strings"
)

var bigTen = big.NewInt(10)

// Pow10 returns 10^n as a freshly allocated big.Int.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}

// FormatBigInt renders amount / 10^decimals with exactly decimals fractional digits.
// Example: amount=1234500, decimals=6 => "1.234500"; amount=-5, decimals=2 => "-0.05".
// No exponent notation is ever produced.
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil {
		amount = new(big.Int)
	}

	sign := ""
	if amount.Sign() < 0 {
		sign = "-"
	}
	digits := new(big.Int).Abs(amount).String()
	if decimals == 0 {
		return sign + digits
	}

	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}
	cut := len(digits) - int(decimals)
	return sign + digits[:cut] + "." + digits[cut:]
}

// TrimFractionZeros drops trailing fractional zeros from a formatted decimal.
// "1.2300" => "1.23", "10.000" => "10". Strings without a point are returned as is.
func TrimFractionZeros(formatted string) string {
	if !strings.Contains(formatted, ".") {
		return formatted
	}
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimSuffix(formatted, ".")
	if formatted == "-0" {
		return "0"
	}
	return formatted
}
