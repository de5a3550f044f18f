// Package list отдаёт уведомления пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/response"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Service описывает работу с уведомлениями.
type Service interface {
	CollectUpcoming(ctx context.Context, userUID string) ([]*models.Notification, error)
	List(ctx context.Context, userUID string) ([]*models.Notification, error)
}

// Handler обрабатывает GET /notifications.
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
// @Summary Уведомления пользователя
// @Description Перед выдачей создаёт уведомления для подписок, истекающих в ближайшие 7 дней.
// @Tags Notifications
// @Security BearerAuth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /notifications [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.list"
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

	if _, err := h.service.CollectUpcoming(r.Context(), userUID); err != nil {
		log.Warn("failed to collect upcoming notifications", sl.Err(err))
	}

	notifications, err := h.service.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list notifications", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"notifications": notifications,
	}))
}
