package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const selectUser = `SELECT uid, email, username, password_hash, role, reset_token, reset_token_expiry, created_at
			  FROM users`

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	var resetToken sql.NullString
	var resetTokenExpiry sql.NullTime
	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &resetToken, &resetTokenExpiry, &u.CreatedAt); err != nil {
		return nil, err
	}
	if resetToken.Valid {
		u.ResetToken = &resetToken.String
	}
	if resetTokenExpiry.Valid {
		u.ResetTokenExpiry = &resetTokenExpiry.Time
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя и возвращает его UID.
// Занятые username или email дают models.ErrUserExists.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	var newID string
	query := `INSERT INTO users (email, username, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid`
	if err := s.q.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role).Scan(&newID); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, models.ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.q.QueryRowContext(ctx, selectUser+` WHERE username = $1`, username))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.q.QueryRowContext(ctx, selectUser+` WHERE email = $1`, email))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// GetUser возвращает пользователя по UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.q.QueryRowContext(ctx, selectUser+` WHERE uid = $1`, userUID))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// SetResetToken сохраняет токен сброса пароля и срок его действия.
func (s *Storage) SetResetToken(ctx context.Context, userUID, token string, expiry time.Time) error {
	const op = "storage.SetResetToken"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	_, err := s.q.ExecContext(ctx, `UPDATE users SET reset_token = $1, reset_token_expiry = $2 WHERE uid = $3`,
		token, expiry, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByResetToken возвращает пользователя с действующим на момент now токеном сброса.
func (s *Storage) GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	const op = "storage.GetUserByResetToken"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	u, err := scanUser(s.q.QueryRowContext(ctx,
		selectUser+` WHERE reset_token = $1 AND reset_token_expiry > $2`, token, now))
	if err != nil {
		return nil, notFound(op, err)
	}
	return u, nil
}

// ResetPassword сохраняет новый хэш пароля и удаляет токен сброса.
func (s *Storage) ResetPassword(ctx context.Context, userUID, passwordHash string) error {
	const op = "storage.ResetPassword"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.q.ExecContext(ctx, `UPDATE users
			  SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL
			  WHERE uid = $2`, passwordHash, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}
