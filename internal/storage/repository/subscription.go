package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const selectSubscription = `SELECT id, user_uid, name, type, start_date, expiry_date, amount, status
			  FROM subscriptions`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row scanner) (*models.Subscription, error) {
	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.Name, &sub.Type,
		&sub.StartDate, &sub.ExpiryDate, &sub.Amount, &sub.Status); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Storage) querySubscriptions(ctx context.Context, op, query string, args ...any) ([]*models.Subscription, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateSubscription вставляет новую подписку и возвращает её ID.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.CreateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO subscriptions (user_uid, name, type, start_date, expiry_date, amount, status)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id`
	var newID int
	err := s.q.QueryRowContext(ctx, query,
		sub.UserUID, sub.Name, sub.Type, sub.StartDate, sub.ExpiryDate, sub.Amount, sub.Status).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetSubscription возвращает подписку пользователя по ID.
func (s *Storage) GetSubscription(ctx context.Context, id int, userUID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	sub, err := scanSubscription(s.q.QueryRowContext(ctx,
		selectSubscription+` WHERE id = $1 AND user_uid = $2`, id, userUID))
	if err != nil {
		return nil, notFound(op, err)
	}
	return sub, nil
}

// UpdateSubscription обновляет подписку пользователя и возвращает количество изменённых строк.
func (s *Storage) UpdateSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	const op = "storage.UpdateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `UPDATE subscriptions
			  SET name = $1, type = $2, start_date = $3, expiry_date = $4, amount = $5
			  WHERE id = $6 AND user_uid = $7`
	result, err := s.q.ExecContext(ctx, query,
		sub.Name, sub.Type, sub.StartDate, sub.ExpiryDate, sub.Amount, sub.ID, sub.UserUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveSubscription удаляет подписку пользователя и возвращает количество удалённых строк.
func (s *Storage) RemoveSubscription(ctx context.Context, id int, userUID string) (int, error) {
	const op = "storage.RemoveSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	result, err := s.q.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1 AND user_uid = $2`, id, userUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListSubscriptions возвращает подписки пользователя с пагинацией.
func (s *Storage) ListSubscriptions(ctx context.Context, userUID string, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.querySubscriptions(ctx, op,
		selectSubscription+` WHERE user_uid = $1 ORDER BY expiry_date, id LIMIT $2 OFFSET $3`,
		userUID, limit, offset)
}

// ListAllSubscriptions возвращает подписки всех пользователей. Для администраторов.
func (s *Storage) ListAllSubscriptions(ctx context.Context, limit, offset int) ([]*models.Subscription, error) {
	const op = "storage.ListAllSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.querySubscriptions(ctx, op,
		selectSubscription+` ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
}

// ListExpiringSubscriptions возвращает подписки пользователя, истекающие в интервале [from, to].
func (s *Storage) ListExpiringSubscriptions(ctx context.Context, userUID string, from, to time.Time) ([]*models.Subscription, error) {
	const op = "storage.ListExpiringSubscriptions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.querySubscriptions(ctx, op,
		selectSubscription+` WHERE user_uid = $1 AND expiry_date BETWEEN $2 AND $3 ORDER BY expiry_date`,
		userUID, from, to)
}

// FindSubscriptionsToNotify возвращает подписки всех пользователей, истекающие в
// интервале [from, to], по которым не было уведомлений после since.
func (s *Storage) FindSubscriptionsToNotify(ctx context.Context, from, to, since time.Time) ([]*models.Subscription, error) {
	const op = "storage.FindSubscriptionsToNotify"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	query := selectSubscription + ` s
			  WHERE s.expiry_date BETWEEN $1 AND $2
			    AND NOT EXISTS (
			      SELECT 1 FROM notifications n
			      WHERE n.subscription_id = s.id AND n.notified_at > $3
			    )
			  ORDER BY s.expiry_date`
	return s.querySubscriptions(ctx, op, query, from, to, since)
}
