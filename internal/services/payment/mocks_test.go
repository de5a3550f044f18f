package payment

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/paymentprovider"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage/repository"
)

// fakeStore хранилище в памяти с семантикой транзакции: изменения
// применяются, только если тело транзакции вернуло nil.
type fakeStore struct {
	subs     map[int]models.Subscription
	payments map[string]models.Payment
	payers   map[string]models.PayerDetails

	failInsertPayment error
	failUpdatePeriod  error
	locks             int
}

func newFakeStore(subs ...models.Subscription) *fakeStore {
	s := &fakeStore{
		subs:     map[int]models.Subscription{},
		payments: map[string]models.Payment{},
		payers:   map[string]models.PayerDetails{},
	}
	for _, sub := range subs {
		s.subs[sub.ID] = sub
	}
	return s
}

func (s *fakeStore) writes() int {
	return len(s.payments) + len(s.payers)
}

type fakeTx struct {
	store    *fakeStore
	sub      models.Subscription
	payments map[string]models.Payment
	payers   map[string]models.PayerDetails
}

func (s *fakeStore) LockSubscription(_ context.Context, id int, fn func(tx repository.SubscriptionTx) error) error {
	s.locks++
	sub, ok := s.subs[id]
	if !ok {
		return models.ErrNotFound
	}
	tx := &fakeTx{store: s, sub: sub, payments: map[string]models.Payment{}, payers: map[string]models.PayerDetails{}}
	if err := fn(tx); err != nil {
		return err
	}
	s.subs[id] = tx.sub
	for k, v := range tx.payments {
		s.payments[k] = v
	}
	for k, v := range tx.payers {
		s.payers[k] = v
	}
	return nil
}

func (t *fakeTx) Subscription() models.Subscription { return t.sub }

func (t *fakeTx) SucceededPaymentTypes(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	for _, p := range t.store.payments {
		if p.SubscriptionID != nil && *p.SubscriptionID == t.sub.ID && p.Status == models.PaymentStatusSucceeded {
			seen[p.PaymentType] = true
		}
	}
	types := make([]string, 0, len(seen))
	for k := range seen {
		types = append(types, k)
	}
	sort.Strings(types)
	return types, nil
}

func (t *fakeTx) InsertPayment(_ context.Context, p models.Payment) (bool, error) {
	if t.store.failInsertPayment != nil {
		return false, t.store.failInsertPayment
	}
	if _, ok := t.store.payments[p.PaymentID]; ok {
		return false, nil
	}
	id := t.sub.ID
	p.SubscriptionID = &id
	t.payments[p.PaymentID] = p
	return true, nil
}

func (t *fakeTx) InsertPayerDetails(_ context.Context, d models.PayerDetails) error {
	t.payers[d.PaymentID] = d
	return nil
}

func (t *fakeTx) UpdatePeriod(_ context.Context, start, expiry time.Time) error {
	if t.store.failUpdatePeriod != nil {
		return t.store.failUpdatePeriod
	}
	t.sub.StartDate = start
	t.sub.ExpiryDate = expiry
	return nil
}

func (s *fakeStore) GetSubscription(_ context.Context, id int, userUID string) (*models.Subscription, error) {
	sub, ok := s.subs[id]
	if !ok || sub.UserUID != userUID {
		return nil, models.ErrNotFound
	}
	return &sub, nil
}

func (s *fakeStore) ListSubscriptions(_ context.Context, userUID string, _, _ int) ([]*models.Subscription, error) {
	var result []*models.Subscription
	for _, sub := range s.subs {
		if sub.UserUID == userUID {
			sub := sub
			result = append(result, &sub)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *fakeStore) ListTransactions(_ context.Context, userUID string) ([]*models.Transaction, error) {
	var result []*models.Transaction
	for _, p := range s.payments {
		if p.UserUID == userUID {
			result = append(result, &models.Transaction{Payment: p})
		}
	}
	return result, nil
}

func (s *fakeStore) GetTransaction(_ context.Context, userUID, paymentID string) (*models.Transaction, error) {
	p, ok := s.payments[paymentID]
	if !ok || p.UserUID != userUID {
		return nil, models.ErrNotFound
	}
	return &models.Transaction{Payment: p}, nil
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, p paymentprovider.CheckoutParams) (*paymentprovider.Session, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Session), args.Error(1)
}

func (m *MockProvider) GetCheckoutSession(ctx context.Context, id string) (*paymentprovider.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.Session), args.Error(1)
}

func (m *MockProvider) GetPaymentIntent(ctx context.Context, id string) (*paymentprovider.PaymentIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.PaymentIntent), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const ownerUID = "550e8400-e29b-41d4-a716-446655440000"

var testNow = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

func testSubscription(id int, expiry time.Time) models.Subscription {
	return models.Subscription{
		ID:         id,
		UserUID:    ownerUID,
		Name:       "Netflix",
		Type:       "Streaming",
		StartDate:  expiry.AddDate(0, -1, 0),
		ExpiryDate: expiry,
		Amount:     decimal.RequireFromString("499.99"),
		Status:     models.StatusActive,
	}
}

func newTestService(t *testing.T, store *fakeStore) (*Service, *MockProvider, *MockCache) {
	t.Helper()
	provider := new(MockProvider)
	cache := new(MockCache)
	svc := New(store, provider, cache, metrics.New(prometheus.NewRegistry()),
		Config{Currency: "inr", PublicBaseURL: "http://api.local"}, newNoopLogger())
	svc.now = func() time.Time { return testNow }
	return svc, provider, cache
}
