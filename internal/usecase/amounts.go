package usecase

import (
	"fmt"
	"math/big"

	"github.com/shieldworks/protect/internal/domain"
	"github.com/shopspring/decimal"
)

// Token decimals used by the tasks.
const (
	DecimalsGovernance uint8 = 18
	DecimalsSettlement uint8 = 6
)

// ParseAmount converts a decimal string into base units. More fractional digits
// than the token has is an error, not a silent truncation.
func ParseAmount(s string, decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", domain.ErrInvalidAmount, s)
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d decimals", domain.ErrInvalidAmount, s, decimals)
	}
	return scaled.BigInt(), nil
}

// MustParseAmount is ParseAmount for constants.
func MustParseAmount(s string, decimals uint8) *big.Int {
	v, err := ParseAmount(s, decimals)
	if err != nil {
		panic(err)
	}
	return v
}

// FormatAmount renders base units as a decimal string without trailing zeros.
func FormatAmount(v *big.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -int32(decimals)).String()
}

// ParseUint parses a non-negative integer argument such as an id or a count.
func ParseUint(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q is not a non-negative integer", domain.ErrInvalidAmount, s)
	}
	return v, nil
}
