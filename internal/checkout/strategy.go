package checkout

import (
	"fmt"

	"ms-marketplace/internal/models"

	"github.com/shopspring/decimal"
)

// Strategy executes one payment attempt. Implementations never touch
// persistent storage; recording the attempt is the checkout service's job.
type Strategy interface {
	Method() models.PaymentMethod
	Process(amount decimal.Decimal, externalReference string) models.PaymentResult
}

// Registry maps payment method tags to strategies. It is populated once at
// startup; Resolve is a pure lookup with no side effects. Adding a payment
// method means registering another Strategy, not modifying the registry.
type Registry struct {
	strategies map[models.PaymentMethod]Strategy
}

func NewRegistry(strategies ...Strategy) *Registry {
	m := make(map[models.PaymentMethod]Strategy, len(strategies))
	for _, s := range strategies {
		m[s.Method()] = s
	}
	return &Registry{strategies: m}
}

func (r *Registry) Resolve(method models.PaymentMethod) (Strategy, error) {
	s, ok := r.strategies[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
	return s, nil
}
