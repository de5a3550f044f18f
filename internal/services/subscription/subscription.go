// Package subscription содержит бизнес-логику для управления подписками и кешированием.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const cacheTTL = time.Hour

// SubscriptionRepository определяет методы для работы с подписками в хранилище.
type SubscriptionRepository interface {
	// CreateSubscription добавляет новую подписку и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// GetSubscription возвращает подписку пользователя по ID.
	GetSubscription(ctx context.Context, id int, userUID string) (*models.Subscription, error)
	// UpdateSubscription обновляет подписку и возвращает количество изменённых записей.
	UpdateSubscription(ctx context.Context, sub models.Subscription) (int, error)
	// RemoveSubscription удаляет подписку и возвращает количество удалённых записей.
	RemoveSubscription(ctx context.Context, id int, userUID string) (int, error)
	ListSubscriptions(ctx context.Context, userUID string, limit, offset int) ([]*models.Subscription, error)
	ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// SubscriptionService реализует бизнес-логику работы с подписками, включая кеширование.
type SubscriptionService struct {
	repo  SubscriptionRepository
	cache Cache
	log   *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, cache Cache, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новую подписку пользователя со статусом Active, кеширует её и возвращает ID.
func (s *SubscriptionService) Create(ctx context.Context, userUID string, req models.DummySubscription) (int, error) {
	sub, err := parseSubscription(req)
	if err != nil {
		return 0, err
	}
	sub.UserUID = userUID
	sub.Status = models.StatusActive

	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return 0, err
	}
	sub.ID = id
	s.log.Info("created new subscription", slog.Int("id", id))

	cacheKey := cache.SubscriptionKey(id)
	if err := s.cache.Set(ctx, cacheKey, sub, cacheTTL); err != nil {
		s.log.Warn("failed to cache subscription", slog.String("key", cacheKey), sl.Err(err))
	}
	return id, nil
}

// Read возвращает подписку пользователя по ID, используя кеш или репозиторий.
func (s *SubscriptionService) Read(ctx context.Context, id int, userUID string) (*models.Subscription, error) {
	cacheKey := cache.SubscriptionKey(id)
	var cached models.Subscription
	found, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		if cached.UserUID != userUID {
			return nil, fmt.Errorf("%w: subscription %d", models.ErrNotFound, id)
		}
		return &cached, nil
	}

	result, err := s.repo.GetSubscription(ctx, id, userUID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, result, cacheTTL); err != nil {
		s.log.Warn("failed to add to cache", slog.String("key", cacheKey), sl.Err(err))
	}
	return result, nil
}

// Update обновляет подписку пользователя и сбрасывает кеш.
func (s *SubscriptionService) Update(ctx context.Context, id int, userUID string, req models.DummySubscription) (int, error) {
	sub, err := parseSubscription(req)
	if err != nil {
		return 0, err
	}
	sub.ID = id
	sub.UserUID = userUID

	res, err := s.repo.UpdateSubscription(ctx, sub)
	if err != nil {
		return 0, err
	}
	if res == 0 {
		return 0, fmt.Errorf("%w: subscription %d", models.ErrNotFound, id)
	}
	s.invalidate(ctx, id)
	s.log.Info("updated subscription", slog.Int("id", id))
	return res, nil
}

// Remove удаляет подписку пользователя и сбрасывает кеш.
func (s *SubscriptionService) Remove(ctx context.Context, id int, userUID string) (int, error) {
	count, err := s.repo.RemoveSubscription(ctx, id, userUID)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: subscription %d", models.ErrNotFound, id)
	}
	s.invalidate(ctx, id)
	return count, nil
}

// List возвращает список подписок в зависимости от роли пользователя.
func (s *SubscriptionService) List(ctx context.Context, userUID, role string, limit, offset int) ([]*models.Subscription, error) {
	var err error
	var subs []*models.Subscription
	if role == models.RoleAdmin {
		subs, err = s.repo.ListAllSubscriptions(ctx, limit, offset)
	} else {
		subs, err = s.repo.ListSubscriptions(ctx, userUID, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *SubscriptionService) invalidate(ctx context.Context, id int) {
	cacheKey := cache.SubscriptionKey(id)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey), sl.Err(err))
	}
}

// parseSubscription проверяет даты и сумму из запроса.
func parseSubscription(req models.DummySubscription) (models.Subscription, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%w: invalid start_date: %w", models.ErrValidation, err)
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%w: invalid expiry_date: %w", models.ErrValidation, err)
	}
	if !expiry.After(start) {
		return models.Subscription{}, fmt.Errorf("%w: expiry_date must be after start_date", models.ErrValidation)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%w: invalid amount: %w", models.ErrValidation, err)
	}
	if !amount.IsPositive() {
		return models.Subscription{}, fmt.Errorf("%w: amount must be positive", models.ErrValidation)
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Type) == "" {
		return models.Subscription{}, fmt.Errorf("%w: name and type are required", models.ErrValidation)
	}
	return models.Subscription{
		Name:       strings.TrimSpace(req.Name),
		Type:       strings.TrimSpace(req.Type),
		StartDate:  start,
		ExpiryDate: expiry,
		Amount:     amount.Round(2),
	}, nil
}

// parseDate принимает даты вида 2006-01-02 и RFC 3339.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New("expected YYYY-MM-DD or RFC 3339")
	}
	return t.UTC(), nil
}
