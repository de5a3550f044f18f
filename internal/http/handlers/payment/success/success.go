// Package success принимает пользователя, вернувшегося со страницы оплаты.
//
// Обработчик сверяет сессию с провайдером и перенаправляет пользователя на
// страницу подписки (оплачено) или обратно на страницу оплаты (не оплачено).
package success

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/payment"
)

// Service описывает сверку сессии оплаты.
type Service interface {
	Reconcile(ctx context.Context, sessionID string) (*payment.ReconciliationResult, error)
}

// Handler обрабатывает GET /payments/success.
type Handler struct {
	log         *slog.Logger
	service     Service
	frontendURL string
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, frontendURL string) *Handler {
	return &Handler{
		log:         log,
		service:     service,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// ServeHTTP godoc
// @Summary Возврат после оплаты
// @Description Сверяет сессию оплаты и перенаправляет на клиентское приложение. Повторный вызов безопасен.
// @Tags Payments
// @Param session_id query string true "ID сессии оплаты"
// @Success 303
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /payments/success [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.success"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		log.Warn("session_id is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("session_id is required"))
		return
	}

	res, err := h.service.Reconcile(r.Context(), sessionID)
	if err != nil {
		log.Error("failed to reconcile payment", slog.String("session_id", sessionID), sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("payment reconciled",
		slog.String("session_id", sessionID),
		slog.String("outcome", string(res.Outcome)),
		slog.Int("subscription_id", res.SubscriptionID),
	)
	http.Redirect(w, r, h.redirectURL(res), http.StatusSeeOther)
}

func (h *Handler) redirectURL(res *payment.ReconciliationResult) string {
	switch res.Outcome {
	case payment.OutcomePaid, payment.OutcomeAlreadyRecorded:
		return fmt.Sprintf("%s/subscriptions/%d", h.frontendURL, res.SubscriptionID)
	default:
		if res.SubscriptionID <= 0 {
			return h.frontendURL + "/payments"
		}
		q := url.Values{"subscription_id": {strconv.Itoa(res.SubscriptionID)}}
		return h.frontendURL + "/payments?" + q.Encode()
	}
}
