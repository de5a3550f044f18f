// Package auth содержит логику регистрации, входа и восстановления пароля.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const (
	resetTokenBytes = 20
	resetTokenTTL   = time.Hour
)

var (
	// ErrInvalidCredentials неверное имя пользователя или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidResetToken токен сброса не найден или истёк.
	ErrInvalidResetToken = fmt.Errorf("%w: invalid or expired reset token", models.ErrValidation)
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (string, error)
	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetResetToken(ctx context.Context, userUID, token string, expiry time.Time) error
	GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	ResetPassword(ctx context.Context, userUID, passwordHash string) error
}

// Publisher публикует задачи для sender.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users     UserRepository
	jwtMaker  jwt.Maker
	publisher Publisher
	// resetURL страница клиента, на которую ведёт ссылка из письма.
	resetURL string
	log      *slog.Logger
	now      func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, publisher Publisher, frontendURL string, log *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		jwtMaker:  jwtMaker,
		publisher: publisher,
		resetURL:  frontendURL + "/reset-password",
		log:       log,
		now:       time.Now,
	}
}

// Register создает нового пользователя с хэшированием пароля и ролью "user".
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}
	return s.users.RegisterUser(ctx, user)
}

// Login проверяет пароль пользователя и выпускает JWT.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UUID)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ValidateToken проверяет JWT и возвращает данные пользователя из него.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*models.User, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Username: claims.Username,
		Role:     claims.Role,
		UUID:     claims.UserUID,
	}, nil
}

// ForgotPassword выпускает токен сброса и ставит письмо со ссылкой в очередь.
// Для неизвестного email ничего не делает и не сообщает об этом.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"
	log := s.log.With(slog.String("op", op))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.SetResetToken(ctx, user.UUID, token, s.now().Add(resetTokenTTL)); err != nil {
		return err
	}

	job := models.PasswordResetJob{
		Email:     user.Email,
		Username:  user.Username,
		ResetLink: s.resetURL + "?token=" + url.QueryEscape(token),
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyPasswordReset, job); err != nil {
		log.Error("failed to publish password reset job", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("password reset job published", slog.String("user_uid", user.UUID))
	return nil
}

// ResetPassword меняет пароль по действующему токену сброса. Токен одноразовый.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.users.GetUserByResetToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return err
	}
	return s.users.ResetPassword(ctx, user.UUID, hashed)
}

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
