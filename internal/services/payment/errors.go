package payment

import (
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

var (
	// ErrSessionNotFound провайдер не знает сессии оплаты.
	ErrSessionNotFound = fmt.Errorf("%w: checkout session not found", models.ErrNotFound)
	// ErrIncompletePayment сессия без payment intent или с испорченными метаданными.
	ErrIncompletePayment = fmt.Errorf("%w: incomplete payment", models.ErrValidation)
	// ErrSubscriptionNotFound подписка удалена или принадлежит другому пользователю.
	ErrSubscriptionNotFound = fmt.Errorf("%w: subscription not found", models.ErrNotFound)
	// ErrPaymentNotAllowed оплата данного типа сейчас недоступна.
	ErrPaymentNotAllowed = fmt.Errorf("%w: payment not allowed", models.ErrValidation)
)
