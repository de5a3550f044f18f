// Package tracker собирает HTTP API трекера подписок.
package tracker

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/forgot"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/auth/reset"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/dashboard"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/health"
	notificationlist "github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/notification/list"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/notification/store"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/payment/checkout"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/payment/options"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/payment/success"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/payment/transaction"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/payment/transactions"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/subscription-tracker/internal/http/middlewarectx"
)

// AuthService всё, что маршрутам нужно от сервиса аутентификации.
type AuthService interface {
	register.Service
	login.Service
	forgot.Service
	reset.Service
	middlewarectx.Service
}

// SubscriptionService операции над подписками.
type SubscriptionService interface {
	create.Service
	read.Service
	update.Service
	remove.Service
	list.Service
}

// PaymentService оплата и история платежей.
type PaymentService interface {
	options.Service
	checkout.Service
	success.Service
	transactions.Service
	transaction.Service
}

// NotificationService уведомления пользователя.
type NotificationService interface {
	notificationlist.Service
	store.Service
}

// Services зависимости обработчиков.
type Services struct {
	Auth          AuthService
	Subscriptions SubscriptionService
	Payments      PaymentService
	Notifications NotificationService
	Dashboard     dashboard.Service
}

// RouterConfig параметры маршрутизатора, не относящиеся к сервисам.
type RouterConfig struct {
	FrontendURL  string
	Limiter      *rate.Limiter
	Gatherer     prometheus.Gatherer
	HealthChecks map[string]health.Check
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, cfg RouterConfig) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svc.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Post("/forgot-password", forgot.New(logger, svc.Auth).ServeHTTP)
		r.Post("/reset-password", reset.New(logger, svc.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, cfg.Limiter))

			r.Post("/subscriptions", create.New(logger, svc.Subscriptions).ServeHTTP)
			r.Get("/subscriptions", list.New(logger, svc.Subscriptions).ServeHTTP)
			r.Get("/subscriptions/{id}", read.New(logger, svc.Subscriptions).ServeHTTP)
			r.Put("/subscriptions/{id}", update.New(logger, svc.Subscriptions).ServeHTTP)
			r.Delete("/subscriptions/{id}", remove.New(logger, svc.Subscriptions).ServeHTTP)

			r.Get("/payments", options.New(logger, svc.Payments).ServeHTTP)
			r.Post("/payments/checkout", checkout.New(logger, svc.Payments).ServeHTTP)
			r.Get("/payments/transactions", transactions.New(logger, svc.Payments).ServeHTTP)
			r.Get("/payments/transactions/{paymentID}", transaction.New(logger, svc.Payments).ServeHTTP)

			r.Get("/notifications", notificationlist.New(logger, svc.Notifications).ServeHTTP)
			r.Post("/notifications/store", store.New(logger, svc.Notifications).ServeHTTP)

			r.Get("/dashboard", dashboard.New(logger, svc.Dashboard).ServeHTTP)
		})
	})

	// Провайдер возвращает сюда пользователя после оплаты
	r.Get("/payments/success", success.New(logger, svc.Payments, cfg.FrontendURL).ServeHTTP)

	r.Get("/health", health.New(logger, cfg.HealthChecks).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
