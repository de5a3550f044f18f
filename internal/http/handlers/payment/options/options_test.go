package options

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ListPaymentOptions(ctx context.Context, userUID string, subscriptionID *int) ([]models.PaymentOption, error) {
	args := m.Called(ctx, userUID, subscriptionID)
	opts, _ := args.Get(0).([]models.PaymentOption)
	return opts, args.Error(1)
}

func newRequest(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return req.WithContext(context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1"))
}

func TestOptionsHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("all subscriptions", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListPaymentOptions", mock.Anything, "uid-1", (*int)(nil)).Return([]models.PaymentOption{
			{Subscription: models.Subscription{ID: 1, Name: "Netflix"}, AllowExtend: true},
		}, nil).Once()

		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, newRequest("/payments"))

		assert.Equal(t, http.StatusOK, rec.Code)
		var got map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		subs := got["data"].(map[string]any)["subscriptions"].([]any)
		require.Len(t, subs, 1)
		assert.Equal(t, true, subs[0].(map[string]any)["allow_extend"])
		svc.AssertExpectations(t)
	})

	t.Run("single subscription", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ListPaymentOptions", mock.Anything, "uid-1", mock.MatchedBy(func(id *int) bool {
			return id != nil && *id == 9
		})).Return(nil, fmt.Errorf("payment.ListPaymentOptions: %w", models.ErrNotFound)).Once()

		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, newRequest("/payments?subscription_id=9"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("bad subscription id", func(t *testing.T) {
		svc := new(ServiceMock)
		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, newRequest("/payments?subscription_id=zero"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
