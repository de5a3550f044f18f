package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/subscription-tracker/internal/migrations"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(connStr)
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}

// TestDataFactory создаёт тестовые данные.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создаёт пользователя и возвращает его UID.
func (f *TestDataFactory) CreateUser(t *testing.T, username string) string {
	t.Helper()
	uid, err := f.storage.RegisterUser(context.Background(), models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hashedpassword",
		Role:         models.RoleUser,
	})
	require.NoError(t, err)
	return uid
}

// CreateSubscription создаёт подписку, истекающую в expiry.
func (f *TestDataFactory) CreateSubscription(t *testing.T, userUID, name string, expiry time.Time) int {
	t.Helper()
	id, err := f.storage.CreateSubscription(context.Background(), models.Subscription{
		UserUID:    userUID,
		Name:       name,
		Type:       "Streaming",
		StartDate:  expiry.AddDate(0, -1, 0),
		ExpiryDate: expiry,
		Amount:     decimal.RequireFromString("499.99"),
		Status:     models.StatusActive,
	})
	require.NoError(t, err)
	return id
}

func (f *TestDataFactory) CountPayments(t *testing.T, paymentID string) int {
	t.Helper()
	var count int
	err := f.storage.DB.QueryRow(`SELECT COUNT(*) FROM payments WHERE payment_id = $1`, paymentID).Scan(&count)
	require.NoError(t, err)
	return count
}

func (f *TestDataFactory) CountPayerDetails(t *testing.T, paymentID string) int {
	t.Helper()
	var count int
	err := f.storage.DB.QueryRow(`SELECT COUNT(*) FROM payer_details WHERE payment_id = $1`, paymentID).Scan(&count)
	require.NoError(t, err)
	return count
}

func testPayment(userUID string) models.Payment {
	return models.Payment{
		PaymentID:        "pi_" + uuid.NewString(),
		UserUID:          userUID,
		SubscriptionName: "Netflix",
		Amount:           decimal.RequireFromString("499.99"),
		Currency:         "inr",
		Status:           models.PaymentStatusSucceeded,
		PaymentType:      models.PaymentTypeNormal,
		PaymentMethod:    "pm_1Nx",
		LatestCharge:     "ch_1",
	}
}
