package checkout

import (
	"fmt"

	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/utils"

	"github.com/shopspring/decimal"
)

// Gateway is the seam to an external payment processor. Charge must be
// idempotent on the reference so that a network-level retry of the same
// logical attempt cannot double-charge.
type Gateway interface {
	Charge(amount decimal.Decimal, currency, reference string) (string, error)
}

// StubGateway stands in when no real processor is configured. Every charge
// succeeds with the reference passed through.
type StubGateway struct{}

func (StubGateway) Charge(amount decimal.Decimal, currency, reference string) (string, error) {
	return reference, nil
}

// OnlineStrategy charges through the configured gateway. A gateway error or
// timeout becomes a FAILED result, never an error to the caller: the
// checkout service records the attempt either way.
type OnlineStrategy struct {
	gateway  Gateway
	currency string
	logger   *logger.Logger
}

func NewOnlineStrategy(gateway Gateway, currency string, log *logger.Logger) *OnlineStrategy {
	return &OnlineStrategy{gateway: gateway, currency: currency, logger: log}
}

func (s *OnlineStrategy) Method() models.PaymentMethod {
	return models.MethodOnline
}

func (s *OnlineStrategy) Process(amount decimal.Decimal, externalReference string) models.PaymentResult {
	ref := externalReference
	if ref == "" {
		ref = utils.PaymentReference("online")
	}

	s.logger.Debug("PAYMENT", fmt.Sprintf("Processing online payment: amount=%s ref=%s", amount, ref))

	gatewayRef, err := s.gateway.Charge(amount, s.currency, ref)
	if err != nil {
		s.logger.Error("PAYMENT", fmt.Sprintf("Gateway charge failed for ref %s: %v", ref, err))
		return models.PaymentResult{
			Success:           false,
			Status:            models.TransactionFailed,
			ExternalReference: ref,
			Message:           fmt.Sprintf("Gateway error: %v", err),
		}
	}

	if gatewayRef == "" {
		gatewayRef = ref
	}

	return models.PaymentResult{
		Success:           true,
		Status:            models.TransactionSuccess,
		ExternalReference: gatewayRef,
		Message:           "Payment processed successfully",
	}
}
