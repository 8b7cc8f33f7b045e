package token

import (
	"errors"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a UI amount cannot be represented in
// raw units.
var ErrInvalidAmount = errors.New("invalid token amount")

var maxRaw = fromRaw(math.MaxUint64)

func fromRaw(raw uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(raw), 0)
}

// FormatAmount renders a raw amount in whole-token units.
func FormatAmount(raw uint64, decimals uint8) string {
	return fromRaw(raw).Shift(-int32(decimals)).String()
}

// ParseAmount converts a whole-token amount such as "1.5" to raw units.
func ParseAmount(s string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.IsNegative() {
		return 0, ErrInvalidAmount
	}

	raw := d.Shift(int32(decimals))
	if !raw.Equal(raw.Truncate(0)) {
		return 0, ErrInvalidAmount
	}
	if raw.GreaterThan(maxRaw) {
		return 0, ErrInvalidAmount
	}
	return raw.BigInt().Uint64(), nil
}
