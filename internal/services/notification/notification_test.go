package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetSubscription(ctx context.Context, id int, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, id, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockRepository) ListExpiringSubscriptions(ctx context.Context, userUID string, from, to time.Time) ([]*models.Subscription, error) {
	args := m.Called(ctx, userUID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscription), args.Error(1)
}

func (m *MockRepository) InsertNotification(ctx context.Context, n models.Notification) (int, error) {
	args := m.Called(ctx, n)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListNotifications(ctx context.Context, userUID string) ([]*models.Notification, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var testNow = time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *MockRepository, *MockPublisher) {
	repo := new(MockRepository)
	pub := new(MockPublisher)
	svc := New(repo, pub, newNoopLogger())
	svc.now = func() time.Time { return testNow }
	return svc, repo, pub
}

func sub(id int, expiry time.Time) *models.Subscription {
	return &models.Subscription{ID: id, UserUID: "uid-1", Name: "Netflix", Type: "Streaming", ExpiryDate: expiry}
}

func TestCollectUpcoming(t *testing.T) {
	svc, repo, pub := newTestService()
	expiring := []*models.Subscription{sub(1, testNow.AddDate(0, 0, 2)), sub(2, testNow.AddDate(0, 0, 6))}

	repo.On("ListExpiringSubscriptions", mock.Anything, "uid-1", testNow, testNow.AddDate(0, 0, 7)).
		Return(expiring, nil).Once()
	repo.On("InsertNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.UserUID == "uid-1" && n.Message == "Your subscription to Netflix is expiring soon on 2024-01-07."
	})).Return(10, nil).Once()
	repo.On("InsertNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.SubscriptionID == 2
	})).Return(11, nil).Once()
	pub.On("Publish", mock.Anything, rabbitmq.RoutingKeyUpcoming, mock.AnythingOfType("models.NotificationJob")).
		Return(nil).Twice()

	got, err := svc.CollectUpcoming(context.Background(), "uid-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 10, got[0].ID)
	assert.Equal(t, 11, got[1].ID)

	job := pub.Calls[0].Arguments.Get(2).(models.NotificationJob)
	assert.Equal(t, "uid-1", job.UserUID)
	assert.Equal(t, "Netflix", job.Subscription.Name)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestNotify_PublishFailureIsNotFatal(t *testing.T) {
	svc, repo, pub := newTestService()
	repo.On("InsertNotification", mock.Anything, mock.Anything).Return(1, nil).Once()
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()

	n, err := svc.Notify(context.Background(), sub(1, testNow), "msg")
	require.NoError(t, err)
	assert.Equal(t, 1, n.ID)
}

func TestNotify_StorageFailure(t *testing.T) {
	svc, repo, pub := newTestService()
	repo.On("InsertNotification", mock.Anything, mock.Anything).Return(0, errors.New("db down")).Once()

	_, err := svc.Notify(context.Background(), sub(1, testNow), "msg")
	require.Error(t, err)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestStore(t *testing.T) {
	req := models.DummyNotification{
		SubscriptionID:   3,
		SubscriptionName: "Spotify Family",
		SubscriptionType: "Music",
		Message:          "renew soon",
	}

	t.Run("uses stored expiry", func(t *testing.T) {
		svc, repo, pub := newTestService()
		expiry := testNow.AddDate(0, 0, 4)
		repo.On("GetSubscription", mock.Anything, 3, "uid-1").Return(sub(3, expiry), nil).Once()
		repo.On("InsertNotification", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
			return n.Expiry.Equal(expiry) && n.SubscriptionName == "Spotify Family" && n.Message == "renew soon"
		})).Return(5, nil).Once()
		pub.On("Publish", mock.Anything, rabbitmq.RoutingKeyUpcoming, mock.Anything).Return(nil).Once()

		n, err := svc.Store(context.Background(), "uid-1", req)
		require.NoError(t, err)
		assert.Equal(t, 5, n.ID)
		repo.AssertExpectations(t)
	})

	t.Run("unknown subscription", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.On("GetSubscription", mock.Anything, 3, "uid-1").Return(nil, models.ErrNotFound).Once()

		_, err := svc.Store(context.Background(), "uid-1", req)
		assert.ErrorIs(t, err, models.ErrNotFound)
		repo.AssertNotCalled(t, "InsertNotification", mock.Anything, mock.Anything)
	})
}
