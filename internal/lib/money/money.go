// Package money переводит суммы из основных единиц валюты в минимальные.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount сумма не число, не положительна или больше MaxMinorUnits.
var ErrInvalidAmount = errors.New("amount must be a positive number")

// MaxMinorUnits наибольшая сумма в минимальных единицах, которую принимает Stripe
// (unit_amount до восьми цифр).
const MaxMinorUnits int64 = 99_999_999

var maxMinor = decimal.NewFromInt(MaxMinorUnits)

// ParseMajor разбирает сумму в основных единицах ("499.99").
func ParseMajor(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// ToMinorUnits переводит сумму в минимальные единицы (×100, округление
// половины от нуля). Результат лежит в интервале (0, MaxMinorUnits].
func ToMinorUnits(major decimal.Decimal) (int64, error) {
	minor := major.Shift(2).Round(0)
	if !minor.IsPositive() || minor.GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidAmount, major.String())
	}
	return minor.IntPart(), nil
}

// FromMinorUnits обратное преобразование для сумм, пришедших от провайдера.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ParseMinor объединяет ParseMajor и ToMinorUnits.
func ParseMinor(s string) (int64, error) {
	d, err := ParseMajor(s)
	if err != nil {
		return 0, err
	}
	return ToMinorUnits(d)
}
