package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	u, err := store.CreateUser(ctx, " User@Example.com ", "Demo User", "hash")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "user@example.com", u.Email)

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "USER@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)
	})

	t.Run("lookup by id", func(t *testing.T) {
		got, err := store.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Demo User", got.Name)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := store.CreateUser(ctx, "user@example.com", "Other", "hash2")
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := store.GetUserByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.GetUserByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStoreProductLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	p, err := store.CreateProduct(ctx, laptop())
	require.NoError(t, err)

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Laptop", products[0].Name)
	assert.Equal(t, CategoryElectronics, products[0].Category)
	assert.Equal(t, 500.0, products[0].Price)

	updated, err := store.UpdateStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Quantity)

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, TransactionAdjust, txs[0].Type)
	assert.Equal(t, -3, txs[0].Quantity, "adjust records the signed difference")
	assert.Equal(t, TransactionAdd, txs[1].Type)
	assert.Equal(t, 5, txs[1].Quantity)
	assert.Equal(t, "Laptop", txs[1].ProductName)

	require.NoError(t, store.DeleteProduct(ctx, p.ID))
	_, err = store.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteProduct(ctx, p.ID), ErrNotFound)

	txs, err = store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 2, "history survives product deletion")
	assert.Empty(t, txs[0].ProductName)
}

func TestStoreUpdateStockErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.UpdateStock(ctx, "missing", 3)
	assert.ErrorIs(t, err, ErrNotFound)

	p, err := store.CreateProduct(ctx, laptop())
	require.NoError(t, err)
	_, err = store.UpdateStock(ctx, p.ID, -1)
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestStoreRecordMovement(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	p, err := store.CreateProduct(ctx, laptop())
	require.NoError(t, err)

	tx, err := store.RecordMovement(ctx, p.ID, TransactionAdd, 3)
	require.NoError(t, err)
	assert.Equal(t, TransactionAdd, tx.Type)
	got, err := store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)

	_, err = store.RecordMovement(ctx, p.ID, TransactionRemove, 8)
	require.NoError(t, err)
	got, err = store.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	_, err = store.RecordMovement(ctx, p.ID, TransactionRemove, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	_, err = store.RecordMovement(ctx, p.ID, TransactionAdjust, 1)
	assert.ErrorIs(t, err, ErrInvalidTransaction)

	_, err = store.RecordMovement(ctx, p.ID, TransactionAdd, 0)
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = store.RecordMovement(ctx, "missing", TransactionAdd, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorePing(t *testing.T) {
	assert.NoError(t, newTestStore(t).Ping(context.Background()))
}
