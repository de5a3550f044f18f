package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Store(ctx context.Context, userUID string, req models.DummyNotification) (*models.Notification, error) {
	args := m.Called(ctx, userUID, req)
	n, _ := args.Get(0).(*models.Notification)
	return n, args.Error(1)
}

func newRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/notifications/store", bytes.NewBufferString(body))
	return req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1"))
}

func TestStoreHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	body := `{"subscription_id":3,"subscription_name":"Netflix","subscription_type":"monthly","message":"renew soon"}`
	want := models.DummyNotification{
		SubscriptionID: 3, SubscriptionName: "Netflix", SubscriptionType: "monthly", Message: "renew soon",
	}

	t.Run("stored", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Store", mock.Anything, "uid-1", want).Return(&models.Notification{ID: 11}, nil).Once()
		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, newRequest(body))
		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("foreign subscription", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("Store", mock.Anything, "uid-1", want).
			Return(nil, fmt.Errorf("notification.Store: %w", models.ErrNotFound)).Once()
		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, newRequest(body))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing message", func(t *testing.T) {
		svc := new(ServiceMock)
		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, newRequest(`{"subscription_id":3,"subscription_name":"Netflix","subscription_type":"monthly"}`))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
