// Package dashboard собирает сводную статистику пользователя.
package dashboard

import (
	"context"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Repository агрегирующие запросы хранилища.
type Repository interface {
	SubscriptionsByMonth(ctx context.Context, userUID string) ([]models.MonthlyCount, error)
	PaymentsByMonth(ctx context.Context, userUID string) ([]models.MonthlyTotal, error)
	CountUniquePayers(ctx context.Context, userUID string) (int, error)
}

// Service сервис статистики.
type Service struct {
	repo Repository
}

// New создает новый экземпляр Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Dashboard возвращает статистику подписок и платежей пользователя.
func (s *Service) Dashboard(ctx context.Context, userUID string) (*models.Dashboard, error) {
	subs, err := s.repo.SubscriptionsByMonth(ctx, userUID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.PaymentsByMonth(ctx, userUID)
	if err != nil {
		return nil, err
	}
	payers, err := s.repo.CountUniquePayers(ctx, userUID)
	if err != nil {
		return nil, err
	}
	return &models.Dashboard{
		SubscriptionsByMonth: subs,
		PaymentsByMonth:      payments,
		UniquePayers:         payers,
	}, nil
}
