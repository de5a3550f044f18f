package models

import "time"

// Notification запись об уведомлении пользователя об истечении подписки.
type Notification struct {
	ID               int       `json:"id"`
	UserUID          string    `json:"user_uid"`
	SubscriptionID   int       `json:"subscription_id"`
	SubscriptionName string    `json:"subscription_name"`
	SubscriptionType string    `json:"subscription_type"`
	Expiry           time.Time `json:"expiry"`
	Message          string    `json:"message"`
	NotifiedAt       time.Time `json:"notified_at"`
}

// DummyNotification тело запроса на сохранение уведомления.
type DummyNotification struct {
	SubscriptionID   int    `json:"subscription_id" validate:"required,gt=0"`
	SubscriptionName string `json:"subscription_name" validate:"required"`
	SubscriptionType string `json:"subscription_type" validate:"required"`
	Message          string `json:"message" validate:"required"`
}

// SubscriptionSummary сведения о подписке, передаваемые в задаче на отправку письма.
type SubscriptionSummary struct {
	SubscriptionID int       `json:"subscription_id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Expiry         time.Time `json:"expiry"`
}

// NotificationJob задача очереди notifications.upcoming.
type NotificationJob struct {
	UserUID      string              `json:"user_uid"`
	Subscription SubscriptionSummary `json:"subscription"`
}

// PasswordResetJob задача очереди notifications.password_reset.
type PasswordResetJob struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	ResetLink string `json:"reset_link"`
}

// SentEmail запись журнала отправленных писем.
type SentEmail struct {
	SenderEmail   string
	ReceiverEmail string
	Subject       string
	Message       string
}
