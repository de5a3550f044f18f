package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/money"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/period"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/paymentprovider"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// Outcome итог сверки сессии оплаты.
type Outcome string

const (
	OutcomePaid            Outcome = "paid"
	OutcomeNotPaid         Outcome = "not_paid"
	OutcomeAlreadyRecorded Outcome = "already_recorded"
)

// ReconciliationResult результат Reconcile.
type ReconciliationResult struct {
	Outcome        Outcome
	SubscriptionID int
	PaymentID      string
	PaymentType    string
	// Extended период подписки сдвинут этим вызовом.
	Extended bool
	// ExtensionSkipped платёж extend записан, но подписка уже не подходила для продления.
	ExtensionSkipped bool
	Subscription     *models.Subscription
}

// Reconcile сверяет завершённую сессию оплаты с провайдером и записывает платёж
// ровно один раз. Повторный вызов для той же сессии ничего не меняет.
func (s *Service) Reconcile(ctx context.Context, sessionID string) (*ReconciliationResult, error) {
	const op = "payment.Reconcile"
	log := s.log.With(slog.String("op", op), slog.String("session_id", sessionID))

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", models.ErrValidation)
	}

	sess, err := s.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, paymentprovider.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %w", models.ErrProvider, err)
	}
	if sess.PaymentIntentID == "" {
		return nil, fmt.Errorf("%w: session has no payment intent", ErrIncompletePayment)
	}

	intent, err := s.provider.GetPaymentIntent(ctx, sess.PaymentIntentID)
	if err != nil {
		if errors.Is(err, paymentprovider.ErrPaymentIntentNotFound) {
			return nil, fmt.Errorf("%w: payment intent %s not found", ErrIncompletePayment, sess.PaymentIntentID)
		}
		return nil, fmt.Errorf("%w: %w", models.ErrProvider, err)
	}

	subscriptionID, idErr := parseSubscriptionID(sess.Metadata)

	if intent.Status != paymentprovider.StatusSucceeded {
		log.Info("payment not completed", slog.String("status", intent.Status))
		s.metrics.Reconciliations.WithLabelValues(string(OutcomeNotPaid)).Inc()
		return &ReconciliationResult{
			Outcome:        OutcomeNotPaid,
			SubscriptionID: subscriptionID,
			PaymentID:      intent.ID,
		}, nil
	}

	if idErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrIncompletePayment, idErr)
	}
	paymentType := sess.Metadata[paymentprovider.MetaPaymentType]
	if paymentType != models.PaymentTypeNormal && paymentType != models.PaymentTypeExtend {
		return nil, fmt.Errorf("%w: unknown payment_type %q", ErrIncompletePayment, paymentType)
	}

	result := &ReconciliationResult{
		Outcome:        OutcomePaid,
		SubscriptionID: subscriptionID,
		PaymentID:      intent.ID,
		PaymentType:    paymentType,
	}

	err = s.repo.LockSubscription(ctx, subscriptionID, func(tx repository.SubscriptionTx) error {
		sub := tx.Subscription()

		inserted, err := tx.InsertPayment(ctx, models.Payment{
			PaymentID:        intent.ID,
			UserUID:          sub.UserUID,
			SubscriptionName: sub.Name,
			Amount:           money.FromMinorUnits(intent.AmountMinor),
			Currency:         intent.Currency,
			Status:           models.PaymentStatusSucceeded,
			PaymentType:      paymentType,
			PaymentMethod:    intent.PaymentMethod,
			LatestCharge:     intent.LatestCharge,
		})
		if err != nil {
			return err
		}
		if !inserted {
			result.Outcome = OutcomeAlreadyRecorded
			result.Subscription = &sub
			return nil
		}

		if err := tx.InsertPayerDetails(ctx, models.PayerDetails{
			PaymentID:      intent.ID,
			UserUID:        sub.UserUID,
			PayerName:      sess.CustomerName,
			PayerEmail:     sess.CustomerEmail,
			AddressCountry: sess.CustomerCountry,
		}); err != nil {
			return err
		}

		if paymentType == models.PaymentTypeExtend {
			if period.IsExtensionEligible(sub.ExpiryDate, s.now()) {
				start, expiry := period.Extend(sub.ExpiryDate)
				if err := tx.UpdatePeriod(ctx, start, expiry); err != nil {
					return err
				}
				result.Extended = true
			} else {
				result.ExtensionSkipped = true
			}
		}

		updated := tx.Subscription()
		result.Subscription = &updated
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("payment for missing subscription", slog.Int("subscription_id", subscriptionID))
			return nil, ErrSubscriptionNotFound
		}
		log.Error("failed to record payment", sl.Err(err))
		return nil, persistence(err)
	}

	if result.Outcome == OutcomePaid {
		if err := s.cache.Invalidate(ctx, cache.SubscriptionKey(subscriptionID)); err != nil {
			log.Warn("failed to invalidate cache", sl.Err(err))
		}
	}

	switch {
	case result.Extended:
		s.metrics.Extensions.WithLabelValues("extended").Inc()
	case result.ExtensionSkipped:
		s.metrics.Extensions.WithLabelValues("skipped").Inc()
		log.Warn("extend payment recorded without extension: subscription not eligible",
			slog.Int("subscription_id", subscriptionID), slog.String("payment_id", intent.ID))
	}
	s.metrics.Reconciliations.WithLabelValues(string(result.Outcome)).Inc()

	log.Info("payment reconciled",
		slog.String("outcome", string(result.Outcome)),
		slog.Int("subscription_id", subscriptionID),
		slog.String("payment_id", intent.ID))
	return result, nil
}

func parseSubscriptionID(meta map[string]string) (int, error) {
	raw, ok := meta[paymentprovider.MetaSubscriptionID]
	if !ok {
		return 0, errors.New("metadata has no subscription_id")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subscription_id %q", raw)
	}
	return id, nil
}
