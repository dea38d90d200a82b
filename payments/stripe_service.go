package payments

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const PaymentStatusPaid = "paid"

// CheckoutSession is the slice of the provider's session object the booking
// flow cares about. The rest of the provider resource stays opaque.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentStatus   string
	PaymentIntentID string
	Metadata        map[string]string
}

type CreateSessionParams struct {
	Currency      string
	AmountMinor   int64
	ProductName   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// CheckoutProvider abstracts the payment provider's checkout-session API.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// ErrSessionMissing is returned by GetSession when the provider has no
// record of the session id.
var ErrSessionMissing = errors.New("provider has no record of this session")

type StripeService struct {
	api *client.API
}

// NewStripeService builds a Stripe-backed provider, or returns nil when no
// secret key is configured so the paid path stays disabled instead of
// crashing at startup.
func NewStripeService(secretKey string) *StripeService {
	if secretKey == "" {
		log.Println("⚠️ STRIPE_SECRET_KEY not set, online payments are disabled")
		return nil
	}

	api := &client.API{}
	api.Init(secretKey, stripe.NewBackends(&http.Client{Timeout: 15 * time.Second}))

	log.Println("✅ Stripe checkout client initialized")
	return &StripeService{api: api}
}

func (s *StripeService) CreateSession(ctx context.Context, p CreateSessionParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(p.SuccessURL),
		CancelURL:          stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.ProductName),
					},
					UnitAmount: stripe.Int64(p.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	for key, value := range p.Metadata {
		params.AddMetadata(key, value)
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, providerError(err)
	}

	return fromStripeSession(sess), nil
}

func (s *StripeService) GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, ErrSessionMissing
		}
		return nil, providerError(err)
	}

	return fromStripeSession(sess), nil
}

func fromStripeSession(sess *stripe.CheckoutSession) *CheckoutSession {
	out := &CheckoutSession{
		ID:            sess.ID,
		URL:           sess.URL,
		PaymentStatus: string(sess.PaymentStatus),
		Metadata:      sess.Metadata,
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out
}

// providerError strips Stripe internals down to the provider's own message
// so it can be passed through for diagnostics without leaking a stack trace.
func providerError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return errors.New(stripeErr.Msg)
	}
	return err
}
