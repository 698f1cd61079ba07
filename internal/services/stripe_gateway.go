package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

var ErrGatewayDisabled = errors.New("payment gateway not configured")

// PaymentGateway is the seam between billing and the external payment provider.
type PaymentGateway interface {
	// Enabled reports whether a provider is configured.
	Enabled() bool
	CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSessionResponse, error)
	CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntentResponse, error)
	Name() string
}

type CheckoutSessionRequest struct {
	ProductName string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSessionResponse struct {
	SessionID string
	URL       string
}

type PaymentIntentRequest struct {
	AmountCents int64
	Currency    string
	Description string
}

type PaymentIntentResponse struct {
	PaymentIntentID string
	Status          string
}

type stripeGateway struct {
	secretKey string
	sessions  session.Client
	intents   paymentintent.Client
}

// NewStripeGateway returns a Stripe-backed gateway. An empty secret key yields
// a gateway that reports itself disabled and rejects every call.
func NewStripeGateway(secretKey string) PaymentGateway {
	backend := stripe.GetBackend(stripe.APIBackend)
	return &stripeGateway{
		secretKey: secretKey,
		sessions:  session.Client{B: backend, Key: secretKey},
		intents:   paymentintent.Client{B: backend, Key: secretKey},
	}
}

func (g *stripeGateway) Name() string {
	return "stripe"
}

func (g *stripeGateway) Enabled() bool {
	return g.secretKey != ""
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, req *CheckoutSessionRequest) (*CheckoutSessionResponse, error) {
	if !g.Enabled() {
		return nil, ErrGatewayDisabled
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(req.AmountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session: %w", err)
	}
	return &CheckoutSessionResponse{SessionID: s.ID, URL: s.URL}, nil
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*PaymentIntentResponse, error) {
	if !g.Enabled() {
		return nil, ErrGatewayDisabled
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountCents),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(false),
		Description:        stripe.String(req.Description),
	}
	params.Context = ctx

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}
	return &PaymentIntentResponse{PaymentIntentID: pi.ID, Status: string(pi.Status)}, nil
}
