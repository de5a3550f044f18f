package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/paymentprovider"
)

func checkoutRequest(paymentType, amount string) models.CheckoutRequest {
	return models.CheckoutRequest{
		SubscriptionName: "Netflix",
		Amount:           models.AmountInput(amount),
		SubscriptionID:   7,
		PaymentType:      paymentType,
	}
}

func succeededPayment(paymentType string) models.Payment {
	id := 7
	return models.Payment{
		PaymentID:      "pi_old",
		UserUID:        ownerUID,
		SubscriptionID: &id,
		Status:         models.PaymentStatusSucceeded,
		PaymentType:    paymentType,
	}
}

func TestCreateCheckout_Normal(t *testing.T) {
	store := newFakeStore(testSubscription(7, testNow.AddDate(0, 0, 20)))
	svc, provider, _ := newTestService(t, store)

	provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p paymentprovider.CheckoutParams) bool {
		return p.AmountMinor == 49999 &&
			p.Currency == "inr" &&
			p.ProductName == "Netflix" &&
			p.SuccessURL == "http://api.local/payments/success?session_id={CHECKOUT_SESSION_ID}" &&
			p.CancelURL == "http://api.local/payments" &&
			p.Metadata[paymentprovider.MetaSubscriptionID] == "7" &&
			p.Metadata[paymentprovider.MetaPaymentType] == "normal" &&
			p.Metadata[paymentprovider.MetaUserUID] == ownerUID
	})).Return(&paymentprovider.Session{ID: "cs_new", URL: "https://checkout.stripe.com/c/cs_new"}, nil).Once()

	session, err := svc.CreateCheckout(context.Background(), ownerUID, checkoutRequest("normal", "499.99"))
	require.NoError(t, err)

	assert.Equal(t, "cs_new", session.SessionID)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_new", session.URL)
	assert.Zero(t, store.writes())
	provider.AssertExpectations(t)
}

func TestCreateCheckout_NormalRejectedWhenAlreadyPaid(t *testing.T) {
	for _, paidType := range []string{models.PaymentTypeNormal, models.PaymentTypeExtend} {
		t.Run(paidType, func(t *testing.T) {
			store := newFakeStore(testSubscription(7, testNow.AddDate(0, 0, 20)))
			store.payments["pi_old"] = succeededPayment(paidType)
			svc, provider, _ := newTestService(t, store)

			session, err := svc.CreateCheckout(context.Background(), ownerUID, checkoutRequest("normal", "499.99"))
			require.ErrorIs(t, err, ErrPaymentNotAllowed)
			assert.ErrorIs(t, err, models.ErrValidation)
			assert.Nil(t, session)
			provider.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateCheckout_NormalAllowedAfterFailedPayment(t *testing.T) {
	store := newFakeStore(testSubscription(7, testNow.AddDate(0, 0, 20)))
	failed := succeededPayment(models.PaymentTypeNormal)
	failed.Status = models.PaymentStatusFailed
	store.payments["pi_old"] = failed
	svc, provider, _ := newTestService(t, store)

	provider.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(&paymentprovider.Session{ID: "cs_new", URL: "https://checkout.stripe.com/c/cs_new"}, nil)

	_, err := svc.CreateCheckout(context.Background(), ownerUID, checkoutRequest("normal", "499.99"))
	require.NoError(t, err)
}

func TestCreateCheckout_Extend(t *testing.T) {
	tests := []struct {
		name    string
		days    int
		allowed bool
	}{
		{name: "expires in 3 days", days: 3, allowed: true},
		{name: "expires in 7 days", days: 7, allowed: true},
		{name: "expires in 8 days", days: 8, allowed: false},
		{name: "already expired", days: -2, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(testSubscription(7, testNow.AddDate(0, 0, tt.days)))
			svc, provider, _ := newTestService(t, store)
			provider.On("CreateCheckoutSession", mock.Anything, mock.Anything).
				Return(&paymentprovider.Session{ID: "cs_ext", URL: "https://checkout.stripe.com/c/cs_ext"}, nil)

			session, err := svc.CreateCheckout(context.Background(), ownerUID, checkoutRequest("extend", "99"))
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, "cs_ext", session.SessionID)
				return
			}
			require.ErrorIs(t, err, ErrPaymentNotAllowed)
			provider.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateCheckout_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		req  models.CheckoutRequest
	}{
		{name: "zero amount", req: checkoutRequest("normal", "0")},
		{name: "negative amount", req: checkoutRequest("normal", "-5")},
		{name: "non numeric amount", req: checkoutRequest("normal", "abc")},
		{name: "empty amount", req: checkoutRequest("normal", "")},
		{name: "amount overflows minor units", req: checkoutRequest("normal", "184467440737095516.17")},
		{name: "amount above provider limit", req: checkoutRequest("extend", "1e20")},
		{name: "unknown payment type", req: checkoutRequest("gift", "10")},
		{name: "empty name", req: models.CheckoutRequest{Amount: "10", SubscriptionID: 7, PaymentType: "normal"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(testSubscription(7, testNow.AddDate(0, 0, 3)))
			svc, provider, _ := newTestService(t, store)

			_, err := svc.CreateCheckout(context.Background(), ownerUID, tt.req)
			require.ErrorIs(t, err, models.ErrValidation)
			assert.Zero(t, store.locks)
			provider.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateCheckout_ForeignSubscription(t *testing.T) {
	store := newFakeStore(testSubscription(7, testNow.AddDate(0, 0, 3)))
	svc, provider, _ := newTestService(t, store)

	_, err := svc.CreateCheckout(context.Background(), "another-user", checkoutRequest("extend", "10"))
	require.ErrorIs(t, err, ErrSubscriptionNotFound)
	provider.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestCreateCheckout_MissingSubscription(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestService(t, store)

	_, err := svc.CreateCheckout(context.Background(), ownerUID, checkoutRequest("normal", "10"))
	require.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestCreateCheckout_ProviderError(t *testing.T) {
	store := newFakeStore(testSubscription(7, testNow.AddDate(0, 0, 20)))
	svc, provider, _ := newTestService(t, store)
	provider.On("CreateCheckoutSession", mock.Anything, mock.Anything).Return(nil, errors.New("stripe: 500"))

	session, err := svc.CreateCheckout(context.Background(), ownerUID, checkoutRequest("normal", "10"))
	require.ErrorIs(t, err, models.ErrProvider)
	assert.Nil(t, session)
}
