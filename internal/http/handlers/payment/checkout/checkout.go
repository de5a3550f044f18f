// Package checkout создаёт сессию оплаты у платёжного провайдера.
//
// Клиент получает URL страницы оплаты и переходит на неё сам; после оплаты провайдер
// возвращает пользователя на /payments/success.
package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Service описывает создание сессии оплаты.
type Service interface {
	CreateCheckout(ctx context.Context, userUID string, req models.CheckoutRequest) (*models.CheckoutSession, error)
}

// Handler обрабатывает POST /payments/checkout.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать сессию оплаты
// @Tags Payments
// @Security BearerAuth
// @Accept  json
// @Produce  json
// @Param request body models.CheckoutRequest true "Параметры оплаты"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Оплата недопустима"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Провайдер недоступен"
// @Router /payments/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"
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

	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	session, err := h.service.CreateCheckout(r.Context(), userUID, req)
	if err != nil {
		log.Warn("failed to create checkout session",
			slog.Int("subscription_id", req.SubscriptionID),
			slog.String("payment_type", req.PaymentType),
			sl.Err(err),
		)
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("checkout session created",
		slog.String("session_id", session.SessionID),
		slog.Int("subscription_id", req.SubscriptionID),
	)
	render.JSON(w, r, response.StatusOKWithData(session))
}
