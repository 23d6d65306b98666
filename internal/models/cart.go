package models

import (
	"time"

	"github.com/uptrace/bun"
)

type CartStatus string

const (
	CartPending   CartStatus = "PENDING"
	CartPaid      CartStatus = "PAID"
	CartCancelled CartStatus = "CANCELLED"
	CartCompleted CartStatus = "COMPLETED"
)

// A cart can be paid only while PENDING; PAID and COMPLETED carts are
// immutable to line edits.
type Cart struct {
	bun.BaseModel `bun:"table:carts"`

	ID            string        `bun:"id,pk" json:"id"`
	UserID        int64         `bun:"user_id,notnull" json:"user_id"`
	Status        CartStatus    `bun:"status,notnull" json:"status"`
	PaymentMethod PaymentMethod `bun:"payment_method,nullzero" json:"payment_method,omitempty"`
	EventDate     time.Time     `bun:"event_date,nullzero" json:"event_date,omitempty"`
	CreatedAt     time.Time     `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time     `bun:"updated_at,nullzero" json:"updated_at,omitempty"`

	Lines []CartLine `bun:"-" json:"lines"`
}

// CartLine pairs an item with a quantity inside one cart. Lines are owned by
// the cart: they are deleted when the cart is deleted or when the cart's
// lines are replaced wholesale on update.
type CartLine struct {
	bun.BaseModel `bun:"table:cart_lines"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	CartID   string `bun:"cart_id,notnull" json:"cart_id"`
	ItemID   string `bun:"item_id,notnull" json:"item_id"`
	Quantity int    `bun:"quantity,notnull" json:"quantity"`
}

type CartLineRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type CreateCartRequest struct {
	PaymentMethod PaymentMethod     `json:"payment_method,omitempty"`
	EventDate     time.Time         `json:"event_date,omitempty"`
	Lines         []CartLineRequest `json:"lines"`
}

type UpdateCartRequest struct {
	Status        CartStatus        `json:"status,omitempty"`
	PaymentMethod PaymentMethod     `json:"payment_method,omitempty"`
	EventDate     time.Time         `json:"event_date,omitempty"`
	Lines         []CartLineRequest `json:"lines,omitempty"`
}
