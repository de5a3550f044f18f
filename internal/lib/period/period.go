// Package period содержит правила продления подписки.
package period

import (
	"math"
	"time"
)

const (
	// EligibilityWindowDays продление доступно, если до окончания осталось не больше этого числа дней.
	EligibilityWindowDays = 7
	// ExtensionDays длительность нового периода.
	ExtensionDays = 30
)

// DaysLeft число дней до окончания, округлённое вверх. Для истёкших подписок не положительно.
func DaysLeft(expiry, now time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

// IsExtensionEligible сообщает, можно ли продлить подписку в момент now.
func IsExtensionEligible(expiry, now time.Time) bool {
	return DaysLeft(expiry, now) <= EligibilityWindowDays
}

// Extend возвращает новый период: начало на следующий день после окончания,
// окончание через ExtensionDays календарных дней после нового начала.
func Extend(expiry time.Time) (start, newExpiry time.Time) {
	start = expiry.AddDate(0, 0, 1)
	newExpiry = start.AddDate(0, 0, ExtensionDays)
	return start, newExpiry
}
