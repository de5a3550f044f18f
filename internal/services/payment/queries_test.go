package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

func TestListPaymentOptions(t *testing.T) {
	soon := testSubscription(1, testNow.AddDate(0, 0, 2))
	later := testSubscription(2, testNow.AddDate(0, 0, 40))
	foreign := testSubscription(3, testNow.AddDate(0, 0, 2))
	foreign.UserUID = "someone-else"
	svc, _, _ := newTestService(t, newFakeStore(soon, later, foreign))

	options, err := svc.ListPaymentOptions(context.Background(), ownerUID, nil)
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, 1, options[0].ID)
	assert.True(t, options[0].AllowExtend)
	assert.Equal(t, 2, options[1].ID)
	assert.False(t, options[1].AllowExtend)

	id := 2
	options, err = svc.ListPaymentOptions(context.Background(), ownerUID, &id)
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, 2, options[0].ID)

	id = 3
	_, err = svc.ListPaymentOptions(context.Background(), ownerUID, &id)
	require.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestTransactions(t *testing.T) {
	store := newFakeStore()
	store.payments["pi_1"] = models.Payment{PaymentID: "pi_1", UserUID: ownerUID}
	store.payments["pi_2"] = models.Payment{PaymentID: "pi_2", UserUID: "someone-else"}
	svc, _, _ := newTestService(t, store)

	txs, err := svc.ListTransactions(context.Background(), ownerUID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "pi_1", txs[0].PaymentID)

	tx, err := svc.GetTransaction(context.Background(), ownerUID, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", tx.PaymentID)

	_, err = svc.GetTransaction(context.Background(), ownerUID, "pi_2")
	require.ErrorIs(t, err, models.ErrNotFound)
}
