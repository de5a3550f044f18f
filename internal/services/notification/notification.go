// Package notification создаёт уведомления об истечении подписок и ставит
// задачи на отправку писем в очередь.
package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/period"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Repository методы хранилища, нужные сервису уведомлений.
type Repository interface {
	GetSubscription(ctx context.Context, id int, userUID string) (*models.Subscription, error)
	ListExpiringSubscriptions(ctx context.Context, userUID string, from, to time.Time) ([]*models.Subscription, error)
	InsertNotification(ctx context.Context, n models.Notification) (int, error)
	ListNotifications(ctx context.Context, userUID string) ([]*models.Notification, error)
}

// Publisher публикует задачи для sender.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Service сервис уведомлений.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
	now       func() time.Time
}

// New создает новый экземпляр Service.
func New(repo Repository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// ExpiryMessage текст уведомления по умолчанию.
func ExpiryMessage(sub *models.Subscription) string {
	return fmt.Sprintf("Your subscription to %s is expiring soon on %s.",
		sub.Name, sub.ExpiryDate.Format(time.DateOnly))
}

// Notify сохраняет уведомление по подписке и ставит письмо в очередь.
// Ошибка публикации только логируется: уведомление уже сохранено.
func (s *Service) Notify(ctx context.Context, sub *models.Subscription, message string) (*models.Notification, error) {
	const op = "notification.Notify"
	log := s.log.With(slog.String("op", op), slog.Int("subscription_id", sub.ID))

	n := models.Notification{
		UserUID:          sub.UserUID,
		SubscriptionID:   sub.ID,
		SubscriptionName: sub.Name,
		SubscriptionType: sub.Type,
		Expiry:           sub.ExpiryDate,
		Message:          message,
		NotifiedAt:       s.now(),
	}
	id, err := s.repo.InsertNotification(ctx, n)
	if err != nil {
		return nil, err
	}
	n.ID = id

	job := models.NotificationJob{
		UserUID: sub.UserUID,
		Subscription: models.SubscriptionSummary{
			SubscriptionID: sub.ID,
			Name:           sub.Name,
			Type:           sub.Type,
			Expiry:         sub.ExpiryDate,
		},
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyUpcoming, job); err != nil {
		log.Error("failed to publish notification job", sl.Err(err))
	}
	return &n, nil
}

// CollectUpcoming создаёт уведомления по подпискам пользователя, истекающим
// в ближайшие period.EligibilityWindowDays дней.
func (s *Service) CollectUpcoming(ctx context.Context, userUID string) ([]*models.Notification, error) {
	now := s.now()
	subs, err := s.repo.ListExpiringSubscriptions(ctx, userUID, now, now.AddDate(0, 0, period.EligibilityWindowDays))
	if err != nil {
		return nil, err
	}

	result := make([]*models.Notification, 0, len(subs))
	for _, sub := range subs {
		n, err := s.Notify(ctx, sub, ExpiryMessage(sub))
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, nil
}

// Store сохраняет уведомление, присланное клиентом, по подписке пользователя.
func (s *Service) Store(ctx context.Context, userUID string, req models.DummyNotification) (*models.Notification, error) {
	sub, err := s.repo.GetSubscription(ctx, req.SubscriptionID, userUID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("%w: subscription %d", models.ErrNotFound, req.SubscriptionID)
		}
		return nil, err
	}
	// Название и тип берутся из запроса, срок из хранилища.
	sub.Name = req.SubscriptionName
	sub.Type = req.SubscriptionType
	return s.Notify(ctx, sub, req.Message)
}

// List возвращает уведомления пользователя.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.Notification, error) {
	return s.repo.ListNotifications(ctx, userUID)
}
