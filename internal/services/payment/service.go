// Package payment реализует оплату подписок через Stripe Checkout:
// создание сессии оплаты, сверку завершённой сессии, историю платежей.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/paymentprovider"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// Repository методы хранилища, нужные платёжному сервису.
type Repository interface {
	LockSubscription(ctx context.Context, id int, fn func(tx repository.SubscriptionTx) error) error
	GetSubscription(ctx context.Context, id int, userUID string) (*models.Subscription, error)
	ListSubscriptions(ctx context.Context, userUID string, limit, offset int) ([]*models.Subscription, error)
	ListTransactions(ctx context.Context, userUID string) ([]*models.Transaction, error)
	GetTransaction(ctx context.Context, userUID, paymentID string) (*models.Transaction, error)
}

// Provider платёжный провайдер.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, p paymentprovider.CheckoutParams) (*paymentprovider.Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*paymentprovider.Session, error)
	GetPaymentIntent(ctx context.Context, id string) (*paymentprovider.PaymentIntent, error)
}

// Cache сбрасывает закэшированную подписку после изменения.
type Cache interface {
	Invalidate(ctx context.Context, key string) error
}

// Config параметры сессий оплаты.
type Config struct {
	Currency      string
	PublicBaseURL string
}

// Service платёжный сервис.
type Service struct {
	repo     Repository
	provider Provider
	cache    Cache
	metrics  *metrics.Metrics
	cfg      Config
	log      *slog.Logger
	now      func() time.Time
}

// New создает новый экземпляр Service.
func New(repo Repository, provider Provider, cache Cache, m *metrics.Metrics, cfg Config, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		cache:    cache,
		metrics:  m,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

func persistence(err error) error {
	return fmt.Errorf("%w: %w", models.ErrPersistence, err)
}
