package cart

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/utils"
)

var (
	// ErrCartNotFound covers both a missing cart and a cart owned by another
	// user. Callers cannot tell the two apart.
	ErrCartNotFound    = errors.New("cart not found")
	ErrCartNotEditable = errors.New("cannot modify a non-pending cart")
	ErrItemNotFound    = errors.New("item not found")
	ErrInvalidQuantity = errors.New("line quantity must be at least 1")
	ErrInvalidStatus   = errors.New("cart status can only be changed to CANCELLED")
)

type DBLayer interface {
	GetCart(cartID string, userID int64) (*models.Cart, error)
	CreateCart(cart models.Cart) error
	UpdateCart(cart models.Cart) error
	ReplaceLines(cartID string, lines []models.CartLine) error
	DeleteCart(cartID string, userID int64) (bool, error)
	ListCartsByUser(userID int64) ([]models.Cart, error)
	ListCartsByUserAndStatus(userID int64, status models.CartStatus) ([]models.Cart, error)
	ItemExists(itemID string) (bool, error)
}

type CartService struct {
	DB     DBLayer
	logger *logger.Logger
}

func NewCartService(db DBLayer, log *logger.Logger) *CartService {
	return &CartService{DB: db, logger: log}
}

func (s *CartService) Create(userID int64, req models.CreateCartRequest) (*models.Cart, error) {
	lines, err := s.buildLines(req.Lines)
	if err != nil {
		return nil, err
	}

	cart := models.Cart{
		ID:            utils.CartID(),
		UserID:        userID,
		Status:        models.CartPending,
		PaymentMethod: req.PaymentMethod,
		EventDate:     req.EventDate,
		CreatedAt:     time.Now(),
		Lines:         lines,
	}

	if err := s.DB.CreateCart(cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	s.logger.LogCart("CREATE", cart.ID, fmt.Sprintf("%d lines for user %d", len(lines), userID))
	return s.Get(cart.ID, userID)
}

func (s *CartService) Get(cartID string, userID int64) (*models.Cart, error) {
	cart, err := s.DB.GetCart(cartID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}
	return cart, nil
}

func (s *CartService) List(userID int64) ([]models.Cart, error) {
	return s.DB.ListCartsByUser(userID)
}

func (s *CartService) ListByStatus(userID int64, status models.CartStatus) ([]models.Cart, error) {
	return s.DB.ListCartsByUserAndStatus(userID, status)
}

// Update applies field changes and, when lines are supplied, replaces the
// cart's lines wholesale. Only PENDING carts can be edited; the only status
// change this path accepts is a cancellation (PAID happens through checkout).
func (s *CartService) Update(cartID string, userID int64, req models.UpdateCartRequest) (*models.Cart, error) {
	cart, err := s.Get(cartID, userID)
	if err != nil {
		return nil, err
	}

	if cart.Status != models.CartPending {
		return nil, ErrCartNotEditable
	}

	if req.Status != "" {
		if req.Status != models.CartCancelled {
			return nil, ErrInvalidStatus
		}
		cart.Status = models.CartCancelled
	}
	if req.PaymentMethod != "" {
		cart.PaymentMethod = req.PaymentMethod
	}
	if !req.EventDate.IsZero() {
		cart.EventDate = req.EventDate
	}

	if err := s.DB.UpdateCart(*cart); err != nil {
		return nil, fmt.Errorf("failed to update cart %s: %w", cartID, err)
	}

	if req.Lines != nil {
		lines, err := s.buildLines(req.Lines)
		if err != nil {
			return nil, err
		}
		if err := s.DB.ReplaceLines(cart.ID, lines); err != nil {
			return nil, fmt.Errorf("failed to replace lines for cart %s: %w", cartID, err)
		}
	}

	s.logger.LogCart("UPDATE", cart.ID, "cart updated")
	return s.Get(cartID, userID)
}

func (s *CartService) Delete(cartID string, userID int64) error {
	found, err := s.DB.DeleteCart(cartID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart %s: %w", cartID, err)
	}
	if !found {
		return ErrCartNotFound
	}
	s.logger.LogCart("DELETE", cartID, "cart and lines removed")
	return nil
}

func (s *CartService) buildLines(reqs []models.CartLineRequest) ([]models.CartLine, error) {
	lines := make([]models.CartLine, 0, len(reqs))
	for _, lr := range reqs {
		qty := lr.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 1 {
			return nil, ErrInvalidQuantity
		}

		exists, err := s.DB.ItemExists(lr.ItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to check item %s: %w", lr.ItemID, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, lr.ItemID)
		}

		lines = append(lines, models.CartLine{ItemID: lr.ItemID, Quantity: qty})
	}
	return lines, nil
}
