package cart_api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ms-marketplace/internal/auth"
	"ms-marketplace/internal/cart"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB is a map-backed DBLayer with a fixed item catalogue.
type fakeDB struct {
	carts map[string]*models.Cart
	items map[string]bool
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		carts: make(map[string]*models.Cart),
		items: map[string]bool{"item-a": true, "item-b": true},
	}
}

func (f *fakeDB) GetCart(cartID string, userID int64) (*models.Cart, error) {
	c, ok := f.carts[cartID]
	if !ok || c.UserID != userID {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (f *fakeDB) CreateCart(c models.Cart) error {
	f.carts[c.ID] = &c
	return nil
}

func (f *fakeDB) UpdateCart(c models.Cart) error {
	stored := f.carts[c.ID]
	stored.Status = c.Status
	stored.PaymentMethod = c.PaymentMethod
	stored.EventDate = c.EventDate
	stored.UpdatedAt = time.Now()
	return nil
}

func (f *fakeDB) ReplaceLines(cartID string, lines []models.CartLine) error {
	f.carts[cartID].Lines = lines
	return nil
}

func (f *fakeDB) DeleteCart(cartID string, userID int64) (bool, error) {
	c, ok := f.carts[cartID]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(f.carts, cartID)
	return true, nil
}

func (f *fakeDB) ListCartsByUser(userID int64) ([]models.Cart, error) {
	out := []models.Cart{}
	for _, c := range f.carts {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeDB) ListCartsByUserAndStatus(userID int64, status models.CartStatus) ([]models.Cart, error) {
	out := []models.Cart{}
	for _, c := range f.carts {
		if c.UserID == userID && c.Status == status {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeDB) ItemExists(itemID string) (bool, error) {
	return f.items[itemID], nil
}

func setupRouter(t *testing.T) (http.Handler, *fakeDB) {
	t.Helper()

	db := newFakeDB()
	handler := NewHandler(cart.NewCartService(db, logger.NewLogger()), logger.NewLogger())

	r := chi.NewRouter()
	r.Use(auth.Middleware())
	r.Post("/carts", handler.CreateCart)
	r.Get("/carts", handler.ListCarts)
	r.Get("/carts/{cartID}", handler.GetCart)
	r.Put("/carts/{cartID}", handler.UpdateCart)
	r.Delete("/carts/{cartID}", handler.DeleteCart)

	return r, db
}

func doRequest(router http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedCart(db *fakeDB, id string, userID int64, status models.CartStatus) {
	db.carts[id] = &models.Cart{
		ID:        id,
		UserID:    userID,
		Status:    status,
		CreatedAt: time.Now(),
		Lines:     []models.CartLine{{ItemID: "item-a", Quantity: 2}},
	}
}

func TestCreateCartHandler(t *testing.T) {
	t.Run("Successful creation", func(t *testing.T) {
		router, db := setupRouter(t)

		w := doRequest(router, "POST", "/carts", "42", models.CreateCartRequest{
			Lines: []models.CartLineRequest{{ItemID: "item-a", Quantity: 2}},
		})

		assert.Equal(t, http.StatusCreated, w.Code)

		var created models.Cart
		require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
		assert.Equal(t, models.CartPending, created.Status)
		assert.Equal(t, int64(42), created.UserID)
		require.Len(t, created.Lines, 1)

		assert.Len(t, db.carts, 1)
	})

	t.Run("Unknown item", func(t *testing.T) {
		router, db := setupRouter(t)

		w := doRequest(router, "POST", "/carts", "42", models.CreateCartRequest{
			Lines: []models.CartLineRequest{{ItemID: "item-missing", Quantity: 1}},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, db.carts)
	})

	t.Run("Missing identity header", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doRequest(router, "POST", "/carts", "", models.CreateCartRequest{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		router, _ := setupRouter(t)

		req := httptest.NewRequest("POST", "/carts", bytes.NewBufferString(`{"lines": `))
		req.Header.Set("X-User-ID", "42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetCartHandler(t *testing.T) {
	t.Run("Owned cart", func(t *testing.T) {
		router, db := setupRouter(t)
		seedCart(db, "cart-1", 42, models.CartPending)

		w := doRequest(router, "GET", "/carts/cart-1", "42", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var got models.Cart
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, "cart-1", got.ID)
	})

	t.Run("Foreign cart looks missing", func(t *testing.T) {
		router, db := setupRouter(t)
		seedCart(db, "cart-1", 42, models.CartPending)

		w := doRequest(router, "GET", "/carts/cart-1", "99", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListCartsHandler(t *testing.T) {
	router, db := setupRouter(t)
	seedCart(db, "cart-1", 42, models.CartPending)
	seedCart(db, "cart-2", 42, models.CartPaid)
	seedCart(db, "cart-3", 99, models.CartPending)

	w := doRequest(router, "GET", "/carts", "42", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var carts []models.Cart
	require.NoError(t, json.NewDecoder(w.Body).Decode(&carts))
	assert.Len(t, carts, 2)

	w = doRequest(router, "GET", "/carts?status=PAID", "42", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	carts = nil
	require.NoError(t, json.NewDecoder(w.Body).Decode(&carts))
	require.Len(t, carts, 1)
	assert.Equal(t, "cart-2", carts[0].ID)
}

func TestUpdateCartHandler(t *testing.T) {
	t.Run("Replace lines", func(t *testing.T) {
		router, db := setupRouter(t)
		seedCart(db, "cart-1", 42, models.CartPending)

		w := doRequest(router, "PUT", "/carts/cart-1", "42", models.UpdateCartRequest{
			Lines: []models.CartLineRequest{{ItemID: "item-b", Quantity: 3}},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, db.carts["cart-1"].Lines, 1)
		assert.Equal(t, "item-b", db.carts["cart-1"].Lines[0].ItemID)
	})

	t.Run("Cancel", func(t *testing.T) {
		router, db := setupRouter(t)
		seedCart(db, "cart-1", 42, models.CartPending)

		w := doRequest(router, "PUT", "/carts/cart-1", "42", models.UpdateCartRequest{
			Status: models.CartCancelled,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.CartCancelled, db.carts["cart-1"].Status)
	})

	t.Run("Paid cart is locked", func(t *testing.T) {
		router, db := setupRouter(t)
		seedCart(db, "cart-1", 42, models.CartPaid)

		w := doRequest(router, "PUT", "/carts/cart-1", "42", models.UpdateCartRequest{
			Lines: []models.CartLineRequest{{ItemID: "item-b", Quantity: 1}},
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Status change other than cancel", func(t *testing.T) {
		router, db := setupRouter(t)
		seedCart(db, "cart-1", 42, models.CartPending)

		w := doRequest(router, "PUT", "/carts/cart-1", "42", models.UpdateCartRequest{
			Status: models.CartPaid,
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDeleteCartHandler(t *testing.T) {
	t.Run("Successful deletion", func(t *testing.T) {
		router, db := setupRouter(t)
		seedCart(db, "cart-1", 42, models.CartPending)

		w := doRequest(router, "DELETE", "/carts/cart-1", "42", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, db.carts)
	})

	t.Run("Unknown cart", func(t *testing.T) {
		router, _ := setupRouter(t)

		w := doRequest(router, "DELETE", "/carts/missing", "42", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
