package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (cents).
type Money int64

const minorUnitsExponent = 2

// ParseMoney converts a decimal major-unit amount such as "45.50" into minor units.
func ParseMoney(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, amount)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount %q", ErrValidation, amount)
	}
	if d.Exponent() < -minorUnitsExponent && !d.Equal(d.Round(minorUnitsExponent)) {
		return 0, fmt.Errorf("%w: amount %q has more than %d decimals", ErrValidation, amount, minorUnitsExponent)
	}

	return Money(d.Shift(minorUnitsExponent).IntPart()), nil
}

func (m Money) Times(n int) Money {
	return m * Money(n)
}

// Discounted applies a percentage discount, rounding half up to the nearest minor unit.
func (m Money) Discounted(percentage int) Money {
	if percentage <= 0 {
		return m
	}
	if percentage >= 100 {
		return 0
	}

	remaining := decimal.NewFromInt(int64(m)).
		Mul(decimal.NewFromInt(int64(100 - percentage))).
		Div(decimal.NewFromInt(100))

	return Money(remaining.Round(0).IntPart())
}

// String formats the amount in major units, e.g. 4550 -> "45.50".
func (m Money) String() string {
	return decimal.New(int64(m), -minorUnitsExponent).StringFixed(minorUnitsExponent)
}
