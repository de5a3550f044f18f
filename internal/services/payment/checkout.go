package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/money"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/period"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/paymentprovider"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// CreateCheckout проверяет, что оплата допустима, и создаёт сессию оплаты у провайдера.
// Проверки выполняются под блокировкой строки подписки, отклонённые запросы до провайдера не доходят.
func (s *Service) CreateCheckout(ctx context.Context, userUID string, req models.CheckoutRequest) (*models.CheckoutSession, error) {
	const op = "payment.CreateCheckout"
	log := s.log.With(slog.String("op", op), slog.Int("subscription_id", req.SubscriptionID),
		slog.String("payment_type", req.PaymentType))

	amountMinor, err := money.ParseMinor(string(req.Amount))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrValidation, err)
	}
	if req.PaymentType != models.PaymentTypeNormal && req.PaymentType != models.PaymentTypeExtend {
		return nil, fmt.Errorf("%w: payment_type must be normal or extend", models.ErrValidation)
	}
	if strings.TrimSpace(req.SubscriptionName) == "" {
		return nil, fmt.Errorf("%w: subscription_name is required", models.ErrValidation)
	}

	var session *paymentprovider.Session
	err = s.repo.LockSubscription(ctx, req.SubscriptionID, func(tx repository.SubscriptionTx) error {
		sub := tx.Subscription()
		if sub.UserUID != userUID {
			return ErrSubscriptionNotFound
		}

		switch req.PaymentType {
		case models.PaymentTypeNormal:
			paid, err := tx.SucceededPaymentTypes(ctx)
			if err != nil {
				return err
			}
			if slices.Contains(paid, models.PaymentTypeNormal) || slices.Contains(paid, models.PaymentTypeExtend) {
				return fmt.Errorf("%w: subscription is already paid, use extend", ErrPaymentNotAllowed)
			}
		case models.PaymentTypeExtend:
			if !period.IsExtensionEligible(sub.ExpiryDate, s.now()) {
				return fmt.Errorf("%w: extension is available within %d days of expiry",
					ErrPaymentNotAllowed, period.EligibilityWindowDays)
			}
		}

		var err error
		session, err = s.provider.CreateCheckoutSession(ctx, paymentprovider.CheckoutParams{
			ProductName: req.SubscriptionName,
			AmountMinor: amountMinor,
			Currency:    s.cfg.Currency,
			SuccessURL:  s.cfg.PublicBaseURL + "/payments/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:   s.cfg.PublicBaseURL + "/payments",
			Metadata: map[string]string{
				paymentprovider.MetaSubscriptionID: strconv.Itoa(sub.ID),
				paymentprovider.MetaPaymentType:    req.PaymentType,
				paymentprovider.MetaUserUID:        userUID,
			},
		})
		if err != nil {
			return fmt.Errorf("%w: %w", models.ErrProvider, err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentNotAllowed):
			s.metrics.Checkouts.WithLabelValues(req.PaymentType, "rejected").Inc()
			return nil, err
		case errors.Is(err, models.ErrProvider):
			s.metrics.Checkouts.WithLabelValues(req.PaymentType, "provider_error").Inc()
			log.Error("failed to create checkout session", sl.Err(err))
			return nil, err
		case errors.Is(err, models.ErrNotFound):
			return nil, ErrSubscriptionNotFound
		default:
			log.Error("failed to check payment eligibility", sl.Err(err))
			return nil, persistence(err)
		}
	}

	s.metrics.Checkouts.WithLabelValues(req.PaymentType, "created").Inc()
	log.Info("checkout session created", slog.String("session_id", session.ID))
	return &models.CheckoutSession{SessionID: session.ID, URL: session.URL}, nil
}
