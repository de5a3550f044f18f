// Package scheduler периодически ищет подписки, истекающие в ближайшие дни,
// и создаёт по ним уведомления.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/period"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// quietPeriod по подписке не создаётся больше одного уведомления за этот интервал.
const quietPeriod = 24 * time.Hour

// SubscriptionRepository ищет подписки для уведомления.
type SubscriptionRepository interface {
	FindSubscriptionsToNotify(ctx context.Context, from, to, since time.Time) ([]*models.Subscription, error)
}

// Notifier сохраняет уведомление и ставит письмо в очередь.
type Notifier interface {
	Notify(ctx context.Context, sub *models.Subscription, message string) (*models.Notification, error)
}

// SchedulerService запускает поиск по таймеру.
type SchedulerService struct {
	repo     SubscriptionRepository
	notifier Notifier
	message  func(*models.Subscription) string
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(repo SubscriptionRepository, notifier Notifier, message func(*models.Subscription) string,
	interval time.Duration, log *slog.Logger) *SchedulerService {
	return &SchedulerService{
		repo:     repo,
		notifier: notifier,
		message:  message,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Run выполняет поиск сразу и затем каждые interval до отмены ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce уведомляет по всем подпискам, истекающим в ближайшие
// period.EligibilityWindowDays дней, и возвращает число созданных уведомлений.
func (s *SchedulerService) RunOnce(ctx context.Context) int {
	const op = "scheduler.RunOnce"
	log := s.log.With(slog.String("op", op))

	now := s.now()
	subs, err := s.repo.FindSubscriptionsToNotify(ctx, now, now.AddDate(0, 0, period.EligibilityWindowDays),
		now.Add(-quietPeriod))
	if err != nil {
		log.Error("failed to find expiring subscriptions", sl.Err(err))
		return 0
	}
	if len(subs) == 0 {
		log.Info("no expiring subscriptions found")
		return 0
	}
	log.Info("found expiring subscriptions", slog.Int("count", len(subs)))

	notified := 0
	for _, sub := range subs {
		if _, err := s.notifier.Notify(ctx, sub, s.message(sub)); err != nil {
			log.Error("failed to notify", slog.Int("subscription_id", sub.ID), sl.Err(err))
			continue
		}
		notified++
	}
	return notified
}
