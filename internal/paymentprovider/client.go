package paymentprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// Client клиент Stripe. Ключ и backend хранятся в экземпляре, глобальное
// состояние stripe-go не используется.
type Client struct {
	sessions checkoutsession.Client
	intents  paymentintent.Client
}

// Option настраивает backend клиента.
type Option func(cfg *stripe.BackendConfig)

// WithBaseURL направляет запросы на другой адрес API (stripe-mock, тесты).
func WithBaseURL(url string) Option {
	return func(cfg *stripe.BackendConfig) {
		cfg.URL = stripe.String(url)
	}
}

// NewClient создаёт клиент с секретным ключом и сетевым таймаутом.
func NewClient(secretKey string, timeout time.Duration, opts ...Option) *Client {
	cfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)

	return &Client{
		sessions: checkoutsession.Client{B: backend, Key: secretKey},
		intents:  paymentintent.Client{B: backend, Key: secretKey},
	}
}

// CreateCheckoutSession создаёт сессию оплаты картой на одну позицию.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*Session, error) {
	const op = "paymentprovider.CreateCheckoutSession"

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(p.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(p.ProductName),
				},
				UnitAmount: stripe.Int64(p.AmountMinor),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		Metadata:   p.Metadata,
	}
	params.Context = ctx

	sess, err := c.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toSession(sess), nil
}

// GetCheckoutSession возвращает сессию по ID.
func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	const op = "paymentprovider.GetCheckoutSession"

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := c.sessions.Get(id, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return toSession(sess), nil
}

// GetPaymentIntent возвращает payment intent по ID.
func (c *Client) GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	const op = "paymentprovider.GetPaymentIntent"

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := c.intents.Get(id, params)
	if err != nil {
		if isResourceMissing(err) {
			return nil, fmt.Errorf("%s: %w", op, ErrPaymentIntentNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &PaymentIntent{
		ID:          pi.ID,
		Status:      string(pi.Status),
		AmountMinor: pi.Amount,
		Currency:    string(pi.Currency),
	}
	switch {
	case pi.PaymentMethod != nil && pi.PaymentMethod.ID != "":
		result.PaymentMethod = pi.PaymentMethod.ID
	case len(pi.PaymentMethodTypes) > 0:
		result.PaymentMethod = pi.PaymentMethodTypes[0]
	}
	if pi.LatestCharge != nil {
		result.LatestCharge = pi.LatestCharge.ID
	}
	return result, nil
}

func toSession(sess *stripe.CheckoutSession) *Session {
	result := &Session{
		ID:       sess.ID,
		URL:      sess.URL,
		Metadata: sess.Metadata,
	}
	if sess.PaymentIntent != nil {
		result.PaymentIntentID = sess.PaymentIntent.ID
	}
	if d := sess.CustomerDetails; d != nil {
		result.CustomerName = d.Name
		result.CustomerEmail = d.Email
		if d.Address != nil {
			result.CustomerCountry = d.Address.Country
		}
	}
	return result
}

func isResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	return errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing
}
