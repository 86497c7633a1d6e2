package oracle

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParsePrice scales a human decimal such as "1.25" by 10^decimals.
// More fractional digits than decimals is an error rather than a silent rounding.
func ParsePrice(s string, decimals uint32) (Int128, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Int128{}, fmt.Errorf("%w: %q is not a decimal", ErrInvalidArgument, s)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Int128{}, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidArgument, s, decimals)
	}
	return Int128FromBig(scaled.BigInt())
}

// FormatPrice renders a stored price as a human decimal.
func FormatPrice(p Int128, decimals uint32) string {
	return decimal.NewFromBigInt(p.Big(), -int32(decimals)).String()
}
