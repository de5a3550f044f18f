package reset

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestResetHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockErr    error
		callMock   bool
		wantStatus int
	}{
		{name: "success", body: `{"token":"abc","password":"new-secret"}`, callMock: true, wantStatus: http.StatusOK},
		{name: "expired token", body: `{"token":"abc","password":"new-secret"}`, callMock: true,
			mockErr: auth.ErrInvalidResetToken, wantStatus: http.StatusBadRequest},
		{name: "missing token", body: `{"password":"new-secret"}`, wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callMock {
				svc.On("ResetPassword", mock.Anything, "abc", "new-secret").Return(tt.mockErr).Once()
			}
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec,
				httptest.NewRequest(http.MethodPost, "/reset-password", bytes.NewBufferString(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			svc.AssertExpectations(t)
		})
	}
}
