package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type PaymentMethod string

const (
	MethodOnline  PaymentMethod = "ONLINE"
	MethodOffline PaymentMethod = "OFFLINE"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
	// TransactionRefunded is a reserved terminal status. No code path
	// produces it yet; refund flows are a future extension.
	TransactionRefunded TransactionStatus = "REFUNDED"
)

// Transaction is one payment attempt against a cart. The ledger is
// append-only: a cart accumulates one row per attempt and rows are never
// updated or deleted. user_id is stored directly so that per-user history
// reads do not join through carts.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions"`

	ID                string            `bun:"id,pk" json:"id"`
	UserID            int64             `bun:"user_id,notnull" json:"user_id"`
	CartID            string            `bun:"cart_id,notnull" json:"cart_id"`
	PaymentMethod     PaymentMethod     `bun:"payment_method,notnull" json:"payment_method"`
	Amount            decimal.Decimal   `bun:"amount,notnull" json:"amount"`
	Status            TransactionStatus `bun:"status,notnull" json:"status"`
	ExternalReference string            `bun:"external_reference,nullzero" json:"external_reference,omitempty"`
	CreatedAt         time.Time         `bun:"created_at,notnull" json:"created_at"`
}

type PayRequest struct {
	PaymentMethod     PaymentMethod `json:"payment_method"`
	ExternalReference string        `json:"external_reference,omitempty"`
}
