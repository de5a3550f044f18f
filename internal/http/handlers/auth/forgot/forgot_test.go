package forgot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func TestForgotHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		body       string
		callMock   bool
		mockErr    error
		wantStatus int
	}{
		{name: "link sent", body: `{"email":"alice@example.com"}`, callMock: true, wantStatus: http.StatusOK},
		{name: "queue unavailable", body: `{"email":"alice@example.com"}`, callMock: true,
			mockErr: errors.New("rabbitmq.Publish: channel closed"), wantStatus: http.StatusInternalServerError},
		{name: "not an email", body: `{"email":"alice"}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "broken json", body: `{"email":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callMock {
				svc.On("ForgotPassword", mock.Anything, "alice@example.com").Return(tt.mockErr).Once()
			}
			rec := httptest.NewRecorder()
			New(log, svc).ServeHTTP(rec,
				httptest.NewRequest(http.MethodPost, "/forgot-password", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			svc.AssertExpectations(t)
		})
	}
}
