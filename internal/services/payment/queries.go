package payment

import (
	"context"
	"errors"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/period"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const optionsLimit = 1000

// ListPaymentOptions возвращает подписки пользователя (или одну запрошенную)
// с признаком возможности продления.
func (s *Service) ListPaymentOptions(ctx context.Context, userUID string, subscriptionID *int) ([]models.PaymentOption, error) {
	var subs []*models.Subscription
	if subscriptionID != nil {
		sub, err := s.repo.GetSubscription(ctx, *subscriptionID, userUID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, ErrSubscriptionNotFound
			}
			return nil, persistence(err)
		}
		subs = []*models.Subscription{sub}
	} else {
		var err error
		subs, err = s.repo.ListSubscriptions(ctx, userUID, optionsLimit, 0)
		if err != nil {
			return nil, persistence(err)
		}
	}

	now := s.now()
	options := make([]models.PaymentOption, 0, len(subs))
	for _, sub := range subs {
		options = append(options, models.PaymentOption{
			Subscription: *sub,
			AllowExtend:  period.IsExtensionEligible(sub.ExpiryDate, now),
		})
	}
	return options, nil
}

// ListTransactions возвращает историю платежей пользователя.
func (s *Service) ListTransactions(ctx context.Context, userUID string) ([]*models.Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx, userUID)
	if err != nil {
		return nil, persistence(err)
	}
	return txs, nil
}

// GetTransaction возвращает платёж пользователя.
func (s *Service) GetTransaction(ctx context.Context, userUID, paymentID string) (*models.Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, userUID, paymentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, persistence(err)
	}
	return tx, nil
}
