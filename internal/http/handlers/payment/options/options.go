// Package options отдаёт подписки пользователя, доступные для оплаты.
package options

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Service описывает получение вариантов оплаты.
type Service interface {
	ListPaymentOptions(ctx context.Context, userUID string, subscriptionID *int) ([]models.PaymentOption, error)
}

// Handler обрабатывает GET /payments.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Варианты оплаты
// @Description Подписки пользователя с признаком allow_extend. subscription_id сужает выборку до одной подписки.
// @Tags Payments
// @Security BearerAuth
// @Produce  json
// @Param subscription_id query int false "ID подписки"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Router /payments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.options"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFrom(r.Context())
	if !ok {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var subscriptionID *int
	if raw := r.URL.Query().Get("subscription_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid subscription_id"))
			return
		}
		subscriptionID = &id
	}

	opts, err := h.service.ListPaymentOptions(r.Context(), userUID, subscriptionID)
	if err != nil {
		log.Warn("failed to list payment options", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}
	if opts == nil {
		opts = []models.PaymentOption{}
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscriptions": opts,
	}))
}
