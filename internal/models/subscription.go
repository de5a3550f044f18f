// Package models содержит доменные структуры: пользователи, подписки,
// платежи, уведомления, а также типы для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusActive статус новой подписки.
const StatusActive = "Active"

// Subscription основная модель подписки, используемая в бизнес-логике и хранилище.
type Subscription struct {
	ID         int             `json:"id"`
	UserUID    string          `json:"user_uid"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	StartDate  time.Time       `json:"start_date"`
	ExpiryDate time.Time       `json:"expiry_date"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
}

// DummySubscription используется для приёма данных из JSON-запроса.
// Даты приходят строками, чтобы их можно было валидировать и парсить вручную.
type DummySubscription struct {
	Name       string `json:"name" validate:"required"`
	Type       string `json:"type" validate:"required"`
	StartDate  string `json:"start_date" validate:"required"`
	ExpiryDate string `json:"expiry_date" validate:"required"`
	Amount     string `json:"amount" validate:"required"`
}

// PaymentOption подписка с признаком возможности продления.
type PaymentOption struct {
	Subscription
	AllowExtend bool `json:"allow_extend"`
}
