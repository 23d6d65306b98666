package ledger

import (
	"context"
	"ms-marketplace/internal/models"

	"github.com/uptrace/bun"
)

// DB is the append-only transaction store. There are deliberately no update
// or delete methods: a payment attempt, once recorded, is permanent.
type DB struct {
	Bun *bun.DB
}

func (d *DB) InsertTransaction(tx models.Transaction) error {
	_, err := d.Bun.NewInsert().Model(&tx).Exec(context.Background())
	return err
}

// ListByCart fetches a cart's payment attempts, newest first.
func (d *DB) ListByCart(cartID string) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	err := d.Bun.NewSelect().
		Model(&txs).
		Where("cart_id = ?", cartID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// ListByUser fetches a user's payment attempts, newest first. The query hits
// the denormalized user_id column directly instead of joining through carts.
func (d *DB) ListByUser(userID int64) ([]models.Transaction, error) {
	txs := []models.Transaction{}
	err := d.Bun.NewSelect().
		Model(&txs).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (d *DB) GetByID(txID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := d.Bun.NewSelect().
		Model(&tx).
		Where("id = ?", txID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
