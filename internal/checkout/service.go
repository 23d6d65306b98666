package checkout

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrCartNotFound covers both a missing cart and a cart owned by another
	// user, so callers cannot probe for other users' carts.
	ErrCartNotFound      = errors.New("cart not found")
	ErrCartNotPayable    = errors.New("cart already paid or completed")
	ErrCartCancelled     = errors.New("cart is cancelled")
	ErrZeroTotal         = errors.New("cart total must be greater than zero")
	ErrUnsupportedMethod = errors.New("unsupported payment method")
	ErrCheckoutBusy      = errors.New("another checkout is in progress for this cart")
)

type CartStore interface {
	GetCart(cartID string, userID int64) (*models.Cart, error)
	MarkCartPaid(cartID string, method models.PaymentMethod) (bool, error)
}

type TransactionStore interface {
	InsertTransaction(tx models.Transaction) error
}

type CheckoutLock interface {
	LockCart(cartID, token string) (bool, error)
	UnlockCart(cartID, token string) error
}

type EventPublisher interface {
	PublishTransactionRecorded(tx models.Transaction) error
	PublishCartPaid(cart models.Cart) error
}

// Service drives the checkout state machine: it validates the cart, computes
// the total at current prices, runs the payment strategy and records the
// attempt in the ledger. Per cart, attempts are serialized behind a redis
// lock, and the PENDING->PAID transition is a compare-and-swap, so two
// concurrent payments of the same cart can never both succeed.
type Service struct {
	Carts    CartStore
	Ledger   TransactionStore
	Pricer   ItemPricer
	Registry *Registry
	Lock     CheckoutLock
	Events   EventPublisher
	logger   *logger.Logger

	LockWait  time.Duration
	LockRetry time.Duration
}

func NewService(carts CartStore, ledger TransactionStore, pricer ItemPricer, registry *Registry, lock CheckoutLock, events EventPublisher, log *logger.Logger) *Service {
	return &Service{
		Carts:     carts,
		Ledger:    ledger,
		Pricer:    pricer,
		Registry:  registry,
		Lock:      lock,
		Events:    events,
		logger:    log,
		LockWait:  2 * time.Second,
		LockRetry: 50 * time.Millisecond,
	}
}

// Pay attempts payment of the cart and returns the recorded Transaction.
// Precondition failures (missing cart, wrong status, zero total, unknown
// method) abort before any write. Once the strategy has run, the attempt is
// always recorded: a gateway failure surfaces as a Transaction with status
// FAILED and the cart stays PENDING and re-payable.
func (s *Service) Pay(cartID string, userID int64, method models.PaymentMethod, externalReference string) (*models.Transaction, error) {
	token := uuid.NewString()
	if err := s.acquireLock(cartID, token); err != nil {
		return nil, err
	}
	defer func() {
		if err := s.Lock.UnlockCart(cartID, token); err != nil {
			s.logger.Error("CHECKOUT", fmt.Sprintf("Failed to unlock cart %s: %v", cartID, err))
		}
	}()

	cart, err := s.loadCart(cartID, userID)
	if err != nil {
		return nil, err
	}

	switch cart.Status {
	case models.CartPaid, models.CartCompleted:
		return nil, ErrCartNotPayable
	case models.CartCancelled:
		return nil, ErrCartCancelled
	}

	amount, err := CartTotal(s.Pricer, cart)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, ErrZeroTotal
	}

	strategy, err := s.Registry.Resolve(method)
	if err != nil {
		return nil, err
	}

	// The only point that may block on an external system.
	result := strategy.Process(amount, externalReference)

	tx := models.Transaction{
		ID:                utils.TransactionID(),
		UserID:            cart.UserID,
		CartID:            cart.ID,
		PaymentMethod:     method,
		Amount:            amount,
		Status:            result.Status,
		ExternalReference: result.ExternalReference,
		CreatedAt:         time.Now(),
	}

	if err := s.Ledger.InsertTransaction(tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction for cart %s: %w", cartID, err)
	}
	s.logger.LogPayment("RECORD", cart.ID, fmt.Sprintf("transaction %s status=%s amount=%s", tx.ID, tx.Status, tx.Amount))

	if result.Success {
		swapped, err := s.Carts.MarkCartPaid(cart.ID, method)
		if err != nil {
			return nil, fmt.Errorf("failed to mark cart %s paid: %w", cartID, err)
		}
		if !swapped {
			// The lock should make this unreachable; the ledger row still
			// records the attempt.
			s.logger.Warn("CHECKOUT", fmt.Sprintf("Cart %s left PENDING state during checkout", cart.ID))
		} else {
			cart.Status = models.CartPaid
			cart.PaymentMethod = method
			s.publishCartPaid(*cart)
		}
	}

	s.publishTransactionRecorded(tx)
	return &tx, nil
}

// GetCartTotal computes the cart's total at current item prices.
func (s *Service) GetCartTotal(cartID string, userID int64) (decimal.Decimal, error) {
	cart, err := s.loadCart(cartID, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return CartTotal(s.Pricer, cart)
}

func (s *Service) loadCart(cartID string, userID int64) (*models.Cart, error) {
	cart, err := s.Carts.GetCart(cartID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", cartID, err)
	}
	return cart, nil
}

// acquireLock polls for the cart's checkout lock so that a concurrent
// attempt is serialized behind the holder instead of failing immediately.
// Attempts still waiting when LockWait runs out give up with ErrCheckoutBusy.
func (s *Service) acquireLock(cartID, token string) error {
	deadline := time.Now().Add(s.LockWait)
	for {
		ok, err := s.Lock.LockCart(cartID, token)
		if err != nil {
			return fmt.Errorf("checkout lock error: %w", err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrCheckoutBusy
		}
		time.Sleep(s.LockRetry)
	}
}

func (s *Service) publishTransactionRecorded(tx models.Transaction) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishTransactionRecorded(tx); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("Failed to publish transaction %s: %v", tx.ID, err))
	}
}

func (s *Service) publishCartPaid(cart models.Cart) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishCartPaid(cart); err != nil {
		s.logger.Error("KAFKA", fmt.Sprintf("Failed to publish cart paid %s: %v", cart.ID, err))
	}
}
