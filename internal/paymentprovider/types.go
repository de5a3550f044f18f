// Package paymentprovider обращается к Stripe Checkout: создание и получение
// сессий оплаты и платёжных намерений (payment intent).
package paymentprovider

import "errors"

var (
	// ErrSessionNotFound провайдер не знает такой сессии.
	ErrSessionNotFound = errors.New("checkout session not found")
	// ErrPaymentIntentNotFound провайдер не знает такого payment intent.
	ErrPaymentIntentNotFound = errors.New("payment intent not found")
)

// StatusSucceeded статус оплаченного payment intent.
const StatusSucceeded = "succeeded"

// Ключи метаданных сессии.
const (
	MetaSubscriptionID = "subscription_id"
	MetaPaymentType    = "payment_type"
	MetaUserUID        = "user_uid"
)

// CheckoutParams параметры новой сессии оплаты.
type CheckoutParams struct {
	ProductName string
	AmountMinor int64
	Currency    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Session сессия оплаты.
type Session struct {
	ID              string
	URL             string
	PaymentIntentID string
	Metadata        map[string]string
	CustomerName    string
	CustomerEmail   string
	CustomerCountry string
}

// PaymentIntent платёжное намерение.
type PaymentIntent struct {
	ID            string
	Status        string
	AmountMinor   int64
	Currency      string
	// PaymentMethod ID способа оплаты (pm_...), если провайдер его не вернул, то тип способа.
	PaymentMethod string
	LatestCharge  string
}
