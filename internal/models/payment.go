package models

// PaymentResult is the transient outcome of a single strategy invocation. It
// is consumed exactly once by the checkout service to build a Transaction
// and is never persisted itself.
type PaymentResult struct {
	Success           bool              `json:"success"`
	Status            TransactionStatus `json:"status"`
	ExternalReference string            `json:"external_reference"`
	Message           string            `json:"message"`
}
