package models

import "github.com/shopspring/decimal"

// MonthlyCount количество подписок с данным названием, начатых в месяце.
type MonthlyCount struct {
	Month string `json:"month"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthlyTotal сумма платежей по подписке за месяц.
type MonthlyTotal struct {
	Month string          `json:"month"`
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
}

// Dashboard сводная статистика пользователя.
type Dashboard struct {
	SubscriptionsByMonth []MonthlyCount `json:"subscriptions_by_month"`
	PaymentsByMonth      []MonthlyTotal `json:"payments_by_month"`
	UniquePayers         int            `json:"unique_payers"`
}
