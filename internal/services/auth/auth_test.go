package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/services/auth"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) SetResetToken(ctx context.Context, userUID, token string, expiry time.Time) error {
	return m.Called(ctx, userUID, token, expiry).Error(0)
}

func (m *UserRepoMock) GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) ResetPassword(ctx context.Context, userUID, passwordHash string) error {
	return m.Called(ctx, userUID, passwordHash).Error(0)
}

type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(username, role, userUID string) (string, error) {
	args := m.Called(username, role, userUID)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService() (*auth.AuthService, *UserRepoMock, *JwtMakerMock, *PublisherMock) {
	repo := new(UserRepoMock)
	jwtMock := new(JwtMakerMock)
	pub := new(PublisherMock)
	svc := auth.NewAuthService(repo, jwtMock, pub, "https://tracker.example.com", newNoopLogger())
	return svc, repo, jwtMock, pub
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name        string
		setupMocks  func(r *UserRepoMock)
		wantUserUID string
		wantErr     error
	}{
		{
			name: "successful registration",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(user models.User) bool {
					return user.Email == "test@example.com" &&
						user.Username == "testuser" &&
						password.CompareHash(user.PasswordHash, "password123") == nil &&
						user.Role == models.RoleUser
				})).Return("some-uuid-string", nil).Once()
			},
			wantUserUID: "some-uuid-string",
		},
		{
			name: "duplicate user",
			setupMocks: func(r *UserRepoMock) {
				r.On("RegisterUser", mock.Anything, mock.Anything).
					Return("", models.ErrUserExists).Once()
			},
			wantErr: models.ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, _ := newService()
			tt.setupMocks(repo)

			got, err := svc.Register(context.Background(), "test@example.com", "testuser", "password123")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantUserUID, got)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	rawPassword := "correctpassword"
	hashedPassword, err := password.GetHash(rawPassword)
	require.NoError(t, err)

	userUID := uuid.NewString()
	testUser := &models.User{
		UUID:         userUID,
		Email:        "test@example.com",
		Username:     "testuser",
		PasswordHash: hashedPassword,
		Role:         models.RoleUser,
	}

	tests := []struct {
		name       string
		username   string
		password   string
		setupMocks func(r *UserRepoMock, j *JwtMakerMock)
		wantToken  string
		wantErr    error
	}{
		{
			name:     "successful login",
			username: "testuser",
			password: rawPassword,
			setupMocks: func(r *UserRepoMock, j *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "testuser").Return(testUser, nil).Once()
				j.On("GenerateToken", "testuser", models.RoleUser, userUID).Return("jwt-token-123", nil).Once()
			},
			wantToken: "jwt-token-123",
		},
		{
			name:     "user not found",
			username: "nonexistent",
			password: "password",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "nonexistent").Return(nil, models.ErrNotFound).Once()
			},
			wantErr: auth.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			username: "testuser",
			password: "wrongpassword",
			setupMocks: func(r *UserRepoMock, _ *JwtMakerMock) {
				r.On("GetUserByUsername", mock.Anything, "testuser").Return(testUser, nil).Once()
			},
			wantErr: auth.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, jwtMock, _ := newService()
			tt.setupMocks(repo, jwtMock)

			token, role, err := svc.Login(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, models.RoleUser, role)
			}
			repo.AssertExpectations(t)
			jwtMock.AssertExpectations(t)
		})
	}
}

func TestAuthService_ValidateToken(t *testing.T) {
	claims := &customjwt.CustomClaims{
		Username: "testuser",
		Role:     models.RoleAdmin,
		UserUID:  "uid-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	svc, _, jwtMock, _ := newService()
	jwtMock.On("ParseToken", "valid-token").Return(claims, nil).Once()
	jwtMock.On("ParseToken", "expired-token").Return(nil, errors.New("token expired")).Once()

	user, err := svc.ValidateToken(context.Background(), "valid-token")
	require.NoError(t, err)
	assert.Equal(t, &models.User{Username: "testuser", Role: models.RoleAdmin, UUID: "uid-1"}, user)

	_, err = svc.ValidateToken(context.Background(), "expired-token")
	assert.ErrorContains(t, err, "token expired")
}

func TestAuthService_ForgotPassword(t *testing.T) {
	user := &models.User{UUID: "uid-1", Email: "jane@example.com", Username: "jane"}
	svc, repo, _, pub := newService()

	var savedToken string
	repo.On("GetUserByEmail", mock.Anything, "jane@example.com").Return(user, nil).Once()
	repo.On("SetResetToken", mock.Anything, "uid-1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) {
			savedToken = args.String(2)
			expiry := args.Get(3).(time.Time)
			assert.WithinDuration(t, time.Now().Add(time.Hour), expiry, time.Minute)
		}).Return(nil).Once()
	pub.On("Publish", mock.Anything, rabbitmq.RoutingKeyPasswordReset, mock.AnythingOfType("models.PasswordResetJob")).
		Return(nil).Once()

	require.NoError(t, svc.ForgotPassword(context.Background(), "jane@example.com"))

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{40}$`), savedToken)
	job := pub.Calls[0].Arguments.Get(2).(models.PasswordResetJob)
	assert.Equal(t, "jane@example.com", job.Email)
	assert.True(t, strings.HasPrefix(job.ResetLink, "https://tracker.example.com/reset-password?token="))
	assert.True(t, strings.HasSuffix(job.ResetLink, savedToken))
}

func TestAuthService_ForgotPassword_UnknownEmail(t *testing.T) {
	svc, repo, _, pub := newService()
	repo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, models.ErrNotFound).Once()

	require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@example.com"))
	repo.AssertNotCalled(t, "SetResetToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_ResetPassword(t *testing.T) {
	t.Run("valid token", func(t *testing.T) {
		svc, repo, _, _ := newService()
		repo.On("GetUserByResetToken", mock.Anything, "tok", mock.AnythingOfType("time.Time")).
			Return(&models.User{UUID: "uid-1"}, nil).Once()
		repo.On("ResetPassword", mock.Anything, "uid-1", mock.MatchedBy(func(hash string) bool {
			return password.CompareHash(hash, "new-secret") == nil
		})).Return(nil).Once()

		require.NoError(t, svc.ResetPassword(context.Background(), "tok", "new-secret"))
		repo.AssertExpectations(t)
	})

	t.Run("expired token", func(t *testing.T) {
		svc, repo, _, _ := newService()
		repo.On("GetUserByResetToken", mock.Anything, "old", mock.AnythingOfType("time.Time")).
			Return(nil, models.ErrNotFound).Once()

		err := svc.ResetPassword(context.Background(), "old", "new-secret")
		assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
		assert.ErrorIs(t, err, models.ErrValidation)
		repo.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
	})
}
