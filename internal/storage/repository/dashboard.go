package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// SubscriptionsByMonth считает подписки пользователя по месяцу начала и названию.
func (s *Storage) SubscriptionsByMonth(ctx context.Context, userUID string) ([]models.MonthlyCount, error) {
	const op = "storage.SubscriptionsByMonth"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `SELECT to_char(start_date, 'YYYY-MM') AS month, name, COUNT(*)
			  FROM subscriptions
			  WHERE user_uid = $1
			  GROUP BY month, name
			  ORDER BY month, name`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	result := []models.MonthlyCount{}
	for rows.Next() {
		var c models.MonthlyCount
		if err := rows.Scan(&c.Month, &c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// PaymentsByMonth суммирует успешные платежи пользователя по месяцу и названию подписки.
func (s *Storage) PaymentsByMonth(ctx context.Context, userUID string) ([]models.MonthlyTotal, error) {
	const op = "storage.PaymentsByMonth"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `SELECT to_char(created_at, 'YYYY-MM') AS month, subscription_name, SUM(amount)
			  FROM payments
			  WHERE user_uid = $1 AND status = 'succeeded'
			  GROUP BY month, subscription_name
			  ORDER BY month, subscription_name`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	result := []models.MonthlyTotal{}
	for rows.Next() {
		var t models.MonthlyTotal
		if err := rows.Scan(&t.Month, &t.Name, &t.Total); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountUniquePayers количество различных email плательщиков пользователя.
func (s *Storage) CountUniquePayers(ctx context.Context, userUID string) (int, error) {
	const op = "storage.CountUniquePayers"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	var count int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(DISTINCT payer_email) FROM payer_details
			  WHERE user_uid = $1 AND payer_email <> ''`, userUID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
