package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// PaymentReference synthesizes a collision-resistant external reference for a
// payment attempt that arrived without one, e.g. "offline-<uuid>".
func PaymentReference(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

// TransactionID generates the opaque id for a ledger row.
func TransactionID() string {
	return uuid.NewString()
}

// CartID generates the opaque id for a cart.
func CartID() string {
	return uuid.NewString()
}
