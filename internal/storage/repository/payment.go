package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const selectTransaction = `SELECT p.payment_id, p.user_uid, p.subscription_id, p.subscription_name, p.amount,
			      p.currency, p.status, p.payment_type, p.payment_method, p.latest_charge, p.created_at,
			      d.payer_name, d.payer_email, d.address_country
			  FROM payments p
			  LEFT JOIN payer_details d ON d.payment_id = p.payment_id`

func scanTransaction(row scanner) (*models.Transaction, error) {
	var t models.Transaction
	var subscriptionID sql.NullInt64
	var name, email, country sql.NullString
	if err := row.Scan(&t.PaymentID, &t.UserUID, &subscriptionID, &t.SubscriptionName, &t.Amount,
		&t.Currency, &t.Status, &t.PaymentType, &t.PaymentMethod, &t.LatestCharge, &t.CreatedAt,
		&name, &email, &country); err != nil {
		return nil, err
	}
	if subscriptionID.Valid {
		id := int(subscriptionID.Int64)
		t.SubscriptionID = &id
	}
	if name.Valid {
		t.PayerName = &name.String
	}
	if email.Valid {
		t.PayerEmail = &email.String
	}
	if country.Valid {
		t.AddressCountry = &country.String
	}
	return &t, nil
}

// ListTransactions возвращает платежи пользователя, новые первыми.
func (s *Storage) ListTransactions(ctx context.Context, userUID string) ([]*models.Transaction, error) {
	const op = "storage.ListTransactions"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, selectTransaction+` WHERE p.user_uid = $1 ORDER BY p.created_at DESC`, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetTransaction возвращает платёж пользователя по payment_id.
func (s *Storage) GetTransaction(ctx context.Context, userUID, paymentID string) (*models.Transaction, error) {
	const op = "storage.GetTransaction"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	t, err := scanTransaction(s.q.QueryRowContext(ctx,
		selectTransaction+` WHERE p.user_uid = $1 AND p.payment_id = $2`, userUID, paymentID))
	if err != nil {
		return nil, notFound(op, err)
	}
	return t, nil
}
