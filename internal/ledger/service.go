package ledger

import (
	"database/sql"
	"errors"
	"fmt"

	"ms-marketplace/internal/models"
)

var (
	ErrCartNotFound        = errors.New("cart not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

type DBLayer interface {
	InsertTransaction(tx models.Transaction) error
	ListByCart(cartID string) ([]models.Transaction, error)
	ListByUser(userID int64) ([]models.Transaction, error)
	GetByID(txID string) (*models.Transaction, error)
}

// CartResolver re-resolves a cart under (id, userID); the ledger leans on it
// for ownership checks on per-cart queries.
type CartResolver interface {
	GetCart(cartID string, userID int64) (*models.Cart, error)
}

type Service struct {
	DB    DBLayer
	Carts CartResolver
}

func NewService(db DBLayer, carts CartResolver) *Service {
	return &Service{DB: db, Carts: carts}
}

// ListByCart returns the cart's payment history, newest first. The cart is
// first re-resolved under (cartID, userID) so one user cannot read another's
// history, and a foreign cart looks exactly like a missing one.
func (s *Service) ListByCart(cartID string, userID int64) ([]models.Transaction, error) {
	cart, err := s.Carts.GetCart(cartID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cart %s: %w", cartID, err)
	}
	return s.DB.ListByCart(cart.ID)
}

// ListByUser returns the user's payment history, newest first.
func (s *Service) ListByUser(userID int64) ([]models.Transaction, error) {
	return s.DB.ListByUser(userID)
}

// GetForUser fetches one transaction, hidden unless owned by the caller.
func (s *Service) GetForUser(txID string, userID int64) (*models.Transaction, error) {
	tx, err := s.DB.GetByID(txID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction %s: %w", txID, err)
	}
	if tx.UserID != userID {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}
