package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// InsertNotification добавляет запись об уведомлении и возвращает её ID.
func (s *Storage) InsertNotification(ctx context.Context, n models.Notification) (int, error) {
	const op = "storage.InsertNotification"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO notifications (user_uid, subscription_id, subscription_name, subscription_type,
			      expiry, message)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var id int
	if err := s.q.QueryRowContext(ctx, query, n.UserUID, n.SubscriptionID, n.SubscriptionName,
		n.SubscriptionType, n.Expiry, n.Message).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListNotifications возвращает уведомления пользователя, новые первыми.
func (s *Storage) ListNotifications(ctx context.Context, userUID string) ([]*models.Notification, error) {
	const op = "storage.ListNotifications"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `SELECT id, user_uid, subscription_id, subscription_name, subscription_type,
			      expiry, message, notified_at
			  FROM notifications
			  WHERE user_uid = $1
			  ORDER BY notified_at DESC`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserUID, &n.SubscriptionID, &n.SubscriptionName, &n.SubscriptionType,
			&n.Expiry, &n.Message, &n.NotifiedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// InsertSentEmail добавляет запись в журнал отправленных писем.
func (s *Storage) InsertSentEmail(ctx context.Context, e models.SentEmail) error {
	const op = "storage.InsertSentEmail"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	_, err := s.q.ExecContext(ctx, `INSERT INTO sent_emails (sender_email, receiver_email, subject, message)
			  VALUES ($1, $2, $3, $4)`, e.SenderEmail, e.ReceiverEmail, e.Subject, e.Message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
