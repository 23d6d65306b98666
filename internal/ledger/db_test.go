package ledger

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-marketplace/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, bunDB.ResetModel(context.Background(), (*models.Transaction)(nil)))

	return &DB{Bun: bunDB}
}

func transaction(id, cartID string, userID int64, status models.TransactionStatus, createdAt time.Time) models.Transaction {
	return models.Transaction{
		ID:            id,
		UserID:        userID,
		CartID:        cartID,
		PaymentMethod: models.MethodOffline,
		Amount:        decimal.RequireFromString("30.00"),
		Status:        status,
		CreatedAt:     createdAt,
	}
}

func TestInsertAndGetByID(t *testing.T) {
	d := setupTestDB(t)

	tx := transaction("tx-1", "cart-1", 42, models.TransactionSuccess, time.Now())
	tx.ExternalReference = "offline-ref"
	require.NoError(t, d.InsertTransaction(tx))

	got, err := d.GetByID("tx-1")
	require.NoError(t, err)

	assert.Equal(t, "cart-1", got.CartID)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, models.TransactionSuccess, got.Status)
	assert.Equal(t, "offline-ref", got.ExternalReference)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("30.00")), "got %s", got.Amount)
}

func TestGetByID_Missing(t *testing.T) {
	d := setupTestDB(t)

	_, err := d.GetByID("tx-missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListByCart_NewestFirst(t *testing.T) {
	d := setupTestDB(t)

	base := time.Now().Add(-time.Hour)
	require.NoError(t, d.InsertTransaction(transaction("tx-1", "cart-1", 42, models.TransactionFailed, base)))
	require.NoError(t, d.InsertTransaction(transaction("tx-2", "cart-1", 42, models.TransactionSuccess, base.Add(time.Minute))))
	require.NoError(t, d.InsertTransaction(transaction("tx-3", "cart-2", 42, models.TransactionSuccess, base)))

	txs, err := d.ListByCart("cart-1")
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "tx-2", txs[0].ID)
	assert.Equal(t, "tx-1", txs[1].ID)
}

func TestListByCart_Empty(t *testing.T) {
	d := setupTestDB(t)

	txs, err := d.ListByCart("cart-none")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestListByUser_NewestFirst(t *testing.T) {
	d := setupTestDB(t)

	base := time.Now().Add(-time.Hour)
	require.NoError(t, d.InsertTransaction(transaction("tx-1", "cart-1", 42, models.TransactionFailed, base)))
	require.NoError(t, d.InsertTransaction(transaction("tx-2", "cart-2", 42, models.TransactionSuccess, base.Add(time.Minute))))
	require.NoError(t, d.InsertTransaction(transaction("tx-3", "cart-3", 99, models.TransactionSuccess, base)))

	txs, err := d.ListByUser(42)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "tx-2", txs[0].ID)
	assert.Equal(t, "tx-1", txs[1].ID)
}

func TestFailedAttemptsAccumulate(t *testing.T) {
	d := setupTestDB(t)

	base := time.Now().Add(-time.Hour)
	require.NoError(t, d.InsertTransaction(transaction("tx-1", "cart-1", 42, models.TransactionFailed, base)))
	require.NoError(t, d.InsertTransaction(transaction("tx-2", "cart-1", 42, models.TransactionFailed, base.Add(time.Minute))))
	require.NoError(t, d.InsertTransaction(transaction("tx-3", "cart-1", 42, models.TransactionSuccess, base.Add(2*time.Minute))))

	txs, err := d.ListByCart("cart-1")
	require.NoError(t, err)
	require.Len(t, txs, 3, "every attempt stays on the ledger")

	assert.Equal(t, models.TransactionSuccess, txs[0].Status)
	assert.Equal(t, models.TransactionFailed, txs[1].Status)
	assert.Equal(t, models.TransactionFailed, txs[2].Status)
}
