package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// SubscriptionTx операции над подпиской, строка которой заблокирована
// (SELECT ... FOR UPDATE) до конца транзакции.
type SubscriptionTx interface {
	Subscription() models.Subscription
	SucceededPaymentTypes(ctx context.Context) ([]string, error)
	InsertPayment(ctx context.Context, p models.Payment) (bool, error)
	InsertPayerDetails(ctx context.Context, d models.PayerDetails) error
	UpdatePeriod(ctx context.Context, start, expiry time.Time) error
}

// LockSubscription открывает транзакцию, блокирует строку подписки и выполняет fn.
// Если fn вернула ошибку, транзакция откатывается и ошибка возвращается без изменений.
// Отсутствующая подписка даёт models.ErrNotFound.
func (s *Storage) LockSubscription(ctx context.Context, id int, fn func(tx SubscriptionTx) error) error {
	const op = "storage.LockSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	sub, err := scanSubscription(tx.QueryRowContext(ctx, selectSubscription+` WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return notFound(op, err)
	}

	if err := fn(&lockedSubscription{q: tx, sub: *sub}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type lockedSubscription struct {
	q   DBTX
	sub models.Subscription
}

func (l *lockedSubscription) Subscription() models.Subscription {
	return l.sub
}

// SucceededPaymentTypes возвращает типы успешных платежей по подписке.
func (l *lockedSubscription) SucceededPaymentTypes(ctx context.Context) ([]string, error) {
	const op = "storage.SucceededPaymentTypes"

	rows, err := l.q.QueryContext(ctx, `SELECT DISTINCT payment_type FROM payments
			  WHERE subscription_id = $1 AND status = $2`, l.sub.ID, models.PaymentStatusSucceeded)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return types, nil
}

// InsertPayment записывает платёж. Возвращает false, если платёж с таким
// payment_id уже был записан.
func (l *lockedSubscription) InsertPayment(ctx context.Context, p models.Payment) (bool, error) {
	const op = "storage.InsertPayment"

	query := `INSERT INTO payments (payment_id, user_uid, subscription_id, subscription_name, amount,
			      currency, status, payment_type, payment_method, latest_charge)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT (payment_id) DO NOTHING`
	result, err := l.q.ExecContext(ctx, query,
		p.PaymentID, p.UserUID, l.sub.ID, p.SubscriptionName, p.Amount,
		p.Currency, p.Status, p.PaymentType, p.PaymentMethod, p.LatestCharge)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

// InsertPayerDetails записывает данные плательщика.
func (l *lockedSubscription) InsertPayerDetails(ctx context.Context, d models.PayerDetails) error {
	const op = "storage.InsertPayerDetails"

	_, err := l.q.ExecContext(ctx, `INSERT INTO payer_details
			      (payment_id, user_uid, payer_name, payer_email, address_country)
			  VALUES ($1, $2, $3, $4, $5)`,
		d.PaymentID, d.UserUID, d.PayerName, d.PayerEmail, d.AddressCountry)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePeriod сдвигает период подписки.
func (l *lockedSubscription) UpdatePeriod(ctx context.Context, start, expiry time.Time) error {
	const op = "storage.UpdatePeriod"

	_, err := l.q.ExecContext(ctx, `UPDATE subscriptions SET start_date = $1, expiry_date = $2, status = $3
			  WHERE id = $4`, start, expiry, models.StatusActive, l.sub.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	l.sub.StartDate = start
	l.sub.ExpiryDate = expiry
	l.sub.Status = models.StatusActive
	return nil
}
