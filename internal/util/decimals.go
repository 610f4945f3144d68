package util

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ToBaseUnits converts a human-readable amount to base units, truncating
// digits beyond decimals. e.g., "10" USDC (6 decimals) -> 10000000
func ToBaseUnits(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}
	if decimals < 0 {
		return nil, fmt.Errorf("invalid decimals: %d", decimals)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %s", amount)
	}

	return d.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}

// FromBaseUnits converts base units to a human-readable amount
// e.g., 10000000 with 6 decimals -> "10"
func FromBaseUnits(amount *big.Int, decimals int) string {
	return ToDecimal(amount, decimals).String()
}

func ToDecimal(amount *big.Int, decimals int) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}
