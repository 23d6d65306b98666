package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Item struct {
	bun.BaseModel `bun:"table:items"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Category  string    `bun:"category,nullzero" json:"category,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}

// ItemDetail carries the current unit price. Checkout always reads the price
// from here at computation time, never from a value cached on the cart.
type ItemDetail struct {
	bun.BaseModel `bun:"table:item_details"`

	ID                int64           `bun:"id,pk,autoincrement" json:"id"`
	ItemID            string          `bun:"item_id,notnull,unique" json:"item_id"`
	Price             decimal.Decimal `bun:"price,notnull" json:"price"`
	QuantityAvailable int             `bun:"quantity_available,notnull" json:"quantity_available"`
}
