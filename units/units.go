// Package units converts between human token amounts and integer base units.
package units

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxDigits is the number of decimal digits of the largest uint256.
const MaxDigits = 78

var (
	ErrFractionalBaseUnits = errors.New("amount has more decimal places than the token")
	ErrAmountTooLarge      = errors.New("amount does not fit in 256 bits")
)

// ToBaseUnits parses amount ("1.5") and scales it by 10^decimals.
func ToBaseUnits(amount string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return DecimalToBaseUnits(d, decimals)
}

// DecimalToBaseUnits rejects amounts with more than MaxDigits integer digits before scaling.
func DecimalToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if amount.IsZero() {
		return new(big.Int), nil
	}
	if digits := int64(amount.NumDigits()) + int64(amount.Exponent()) + int64(decimals); digits > MaxDigits {
		return nil, fmt.Errorf("%w: %s with %d decimals", ErrAmountTooLarge, amount, decimals)
	}
	scaled := amount.Shift(decimals)
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %s with %d decimals", ErrFractionalBaseUnits, amount, decimals)
	}
	return scaled.BigInt(), nil
}

// FromBaseUnits scales a base-unit quantity down by 10^decimals.
func FromBaseUnits(quantity *big.Int, decimals int32) decimal.Decimal {
	if quantity == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(quantity, -decimals)
}

// Format renders a base-unit quantity as a plain decimal string without trailing zeros.
func Format(quantity *big.Int, decimals int32) string {
	return FromBaseUnits(quantity, decimals).String()
}
