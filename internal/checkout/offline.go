package checkout

import (
	"fmt"

	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/utils"

	"github.com/shopspring/decimal"
)

// OfflineStrategy records payment intent for methods settled outside the
// system (cash, bank transfer). It always succeeds and makes no external
// calls.
type OfflineStrategy struct {
	logger *logger.Logger
}

func NewOfflineStrategy(log *logger.Logger) *OfflineStrategy {
	return &OfflineStrategy{logger: log}
}

func (s *OfflineStrategy) Method() models.PaymentMethod {
	return models.MethodOffline
}

func (s *OfflineStrategy) Process(amount decimal.Decimal, externalReference string) models.PaymentResult {
	ref := externalReference
	if ref == "" {
		ref = utils.PaymentReference("offline")
	}

	s.logger.Debug("PAYMENT", fmt.Sprintf("Recording offline payment: amount=%s ref=%s", amount, ref))

	return models.PaymentResult{
		Success:           true,
		Status:            models.TransactionSuccess,
		ExternalReference: ref,
		Message:           "Offline payment recorded",
	}
}
