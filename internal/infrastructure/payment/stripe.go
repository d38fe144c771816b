// Package payment wraps the Stripe checkout-session API behind the
// CheckoutProvider port.
package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"

	"github.com/man7ober/natours/internal/core/ports"
)

// StripeProvider creates checkout sessions against the Stripe API.
type StripeProvider struct{}

// NewStripeProvider configures the global Stripe client with the secret key.
func NewStripeProvider(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{}
}

func (p *StripeProvider) CreateSession(ctx context.Context, input ports.CheckoutSessionInput) (*ports.CheckoutSession, error) {
	tour := input.Tour

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(input.SuccessURL),
		CancelURL:          stripe.String(input.CancelURL),
		CustomerEmail:      stripe.String(input.CustomerEmail),
		ClientReferenceID:  stripe.String(input.ClientRefID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					// Stripe amounts are in the currency's smallest unit.
					UnitAmount: stripe.Int64(int64(tour.Price * 100)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(tour.Name + " Tour"),
						Description: stripe.String(tour.Summary),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}

	return &ports.CheckoutSession{ID: s.ID, URL: s.URL}, nil
}
