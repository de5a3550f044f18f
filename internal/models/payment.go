package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Типы платежей.
const (
	PaymentTypeNormal = "normal"
	PaymentTypeExtend = "extend"
)

// Статусы платежей.
const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Payment запись об оплате подписки. PaymentID ссылка на payment intent
// провайдера и ключ дедупликации.
type Payment struct {
	PaymentID        string          `json:"payment_id"`
	UserUID          string          `json:"user_uid"`
	SubscriptionID   *int            `json:"subscription_id,omitempty"`
	SubscriptionName string          `json:"subscription_name"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	PaymentType      string          `json:"payment_type"`
	PaymentMethod    string          `json:"payment_method"`
	LatestCharge     string          `json:"latest_charge"`
	CreatedAt        time.Time       `json:"created_at"`
}

// PayerDetails данные плательщика, 1:1 с Payment.
type PayerDetails struct {
	PaymentID      string `json:"payment_id"`
	UserUID        string `json:"user_uid"`
	PayerName      string `json:"payer_name"`
	PayerEmail     string `json:"payer_email"`
	AddressCountry string `json:"address_country"`
}

// Transaction платёж вместе с данными плательщика (если они есть).
type Transaction struct {
	Payment
	PayerName      *string `json:"payer_name,omitempty"`
	PayerEmail     *string `json:"payer_email,omitempty"`
	AddressCountry *string `json:"address_country,omitempty"`
}

// CheckoutRequest запрос на создание сессии оплаты.
// Amount принимается и строкой, и числом.
type CheckoutRequest struct {
	SubscriptionName string      `json:"subscription_name" validate:"required"`
	Amount           AmountInput `json:"amount" validate:"required"`
	SubscriptionID   int         `json:"subscription_id" validate:"required,gt=0"`
	PaymentType      string      `json:"payment_type" validate:"required,oneof=normal extend"`
}

// CheckoutSession ответ на создание сессии оплаты.
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}
