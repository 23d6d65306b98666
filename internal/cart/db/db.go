package db

import (
	"context"
	"database/sql"
	"ms-marketplace/internal/models"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- CARTS ----------------

// GetCart fetches a cart scoped to (id, user_id) and loads its lines. A cart
// owned by another user is indistinguishable from a missing one.
func (d *DB) GetCart(cartID string, userID int64) (*models.Cart, error) {
	var cart models.Cart
	err := d.Bun.NewSelect().
		Model(&cart).
		Where("id = ?", cartID).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}

	lines, err := d.getLines(cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Lines = lines

	return &cart, nil
}

func (d *DB) getLines(cartID string) ([]models.CartLine, error) {
	lines := []models.CartLine{}
	err := d.Bun.NewSelect().
		Model(&lines).
		Where("cart_id = ?", cartID).
		Order("id").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// CreateCart inserts a cart and its lines in one transaction.
func (d *DB) CreateCart(cart models.Cart) error {
	return d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&cart).Exec(ctx); err != nil {
			return err
		}
		if len(cart.Lines) == 0 {
			return nil
		}
		for i := range cart.Lines {
			cart.Lines[i].CartID = cart.ID
		}
		_, err := tx.NewInsert().Model(&cart.Lines).Exec(ctx)
		return err
	})
}

// UpdateCart updates the mutable cart fields.
func (d *DB) UpdateCart(cart models.Cart) error {
	cart.UpdatedAt = time.Now()
	_, err := d.Bun.NewUpdate().
		Model(&cart).
		Column("status", "payment_method", "event_date", "updated_at").
		Where("id = ?", cart.ID).
		Exec(context.Background())
	return err
}

// ReplaceLines swaps the cart's lines wholesale: the old lines are deleted
// and the new ones inserted in the same transaction.
func (d *DB) ReplaceLines(cartID string, lines []models.CartLine) error {
	return d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.CartLine)(nil)).
			Where("cart_id = ?", cartID).
			Exec(ctx); err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		for i := range lines {
			lines[i].CartID = cartID
		}
		_, err := tx.NewInsert().Model(&lines).Exec(ctx)
		return err
	})
}

// DeleteCart removes a cart and its lines in one transaction. Returns false
// when no cart matched (missing or not owned by the caller).
func (d *DB) DeleteCart(cartID string, userID int64) (bool, error) {
	found := false
	err := d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.Cart)(nil)).
			Where("id = ?", cartID).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		found = true
		_, err = tx.NewDelete().
			Model((*models.CartLine)(nil)).
			Where("cart_id = ?", cartID).
			Exec(ctx)
		return err
	})
	return found, err
}

// ListCartsByUser fetches all of a user's carts, newest first, with lines.
func (d *DB) ListCartsByUser(userID int64) ([]models.Cart, error) {
	return d.listCarts(userID, "")
}

// ListCartsByUserAndStatus fetches a user's carts in one status, newest first.
func (d *DB) ListCartsByUserAndStatus(userID int64, status models.CartStatus) ([]models.Cart, error) {
	return d.listCarts(userID, status)
}

func (d *DB) listCarts(userID int64, status models.CartStatus) ([]models.Cart, error) {
	var carts []models.Cart
	q := d.Bun.NewSelect().
		Model(&carts).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(context.Background()); err != nil {
		return nil, err
	}

	if len(carts) == 0 {
		return []models.Cart{}, nil
	}

	cartIDs := make([]string, len(carts))
	for i, c := range carts {
		cartIDs[i] = c.ID
	}

	var lines []models.CartLine
	err := d.Bun.NewSelect().
		Model(&lines).
		Where("cart_id IN (?)", bun.In(cartIDs)).
		Order("cart_id", "id").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}

	linesByCart := make(map[string][]models.CartLine)
	for _, line := range lines {
		linesByCart[line.CartID] = append(linesByCart[line.CartID], line)
	}

	for i := range carts {
		carts[i].Lines = linesByCart[carts[i].ID]
		if carts[i].Lines == nil {
			carts[i].Lines = []models.CartLine{}
		}
	}

	return carts, nil
}

// MarkCartPaid transitions a cart to PAID, but only from PENDING. The status
// guard in the WHERE clause makes the transition a compare-and-swap: a
// concurrent checkout that already paid the cart leaves nothing to update
// and the caller sees false.
func (d *DB) MarkCartPaid(cartID string, method models.PaymentMethod) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Cart)(nil)).
		Set("status = ?", models.CartPaid).
		Set("payment_method = ?", method).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", cartID).
		Where("status = ?", models.CartPending).
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// ---------------- ITEMS ----------------

func (d *DB) ItemExists(itemID string) (bool, error) {
	count, err := d.Bun.NewSelect().
		Model((*models.Item)(nil)).
		Where("id = ?", itemID).
		Count(context.Background())
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UnitPrice reads the item's current price from its detail record. The
// second return is false when the item (or its detail row) no longer exists.
func (d *DB) UnitPrice(itemID string) (decimal.Decimal, bool, error) {
	var detail models.ItemDetail
	err := d.Bun.NewSelect().
		Model(&detail).
		Where("item_id = ?", itemID).
		Limit(1).
		Scan(context.Background())
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return detail.Price, true, nil
}
