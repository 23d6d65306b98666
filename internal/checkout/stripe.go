package checkout

import (
	"errors"
	"fmt"

	"ms-marketplace/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")

// StripeGateway charges through Stripe PaymentIntents. The external
// reference doubles as the Stripe idempotency key, so retrying the same
// logical attempt cannot charge twice.
type StripeGateway struct {
	client *client.API
	logger *logger.Logger
}

func NewStripeGateway(secretKey string, log *logger.Logger) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, ErrStripeClientInitFailed
	}

	sc := client.New(secretKey, nil)
	if sc == nil {
		return nil, ErrStripeClientInitFailed
	}

	log.Info("STRIPE", "Stripe client initialized successfully")
	return &StripeGateway{client: sc, logger: log}, nil
}

func (g *StripeGateway) Charge(amount decimal.Decimal, currency, reference string) (string, error) {
	minorUnits := amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minorUnits),
		Currency: stripe.String(currency),
		Confirm:  stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.SetIdempotencyKey(reference)

	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payment intent failed: %w", err)
	}

	g.logger.Info("STRIPE", fmt.Sprintf("Payment intent %s created for %s %s", pi.ID, amount, currency))
	return pi.ID, nil
}
