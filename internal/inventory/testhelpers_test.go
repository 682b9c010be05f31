package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/TayyabaHussain58/InventoryApp/internal/auth"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(newTestStore(t), auth.NewPasswordHasher(bcrypt.MinCost))
}

func laptop() ProductInput {
	return ProductInput{
		Name:        "Laptop",
		Description: "A new laptop",
		Category:    CategoryElectronics,
		Price:       500,
		Quantity:    5,
		Location:    "Aisle 1",
	}
}

func mustAddProduct(t *testing.T, s *Service, in ProductInput) *Product {
	t.Helper()
	p, err := s.AddProduct(context.Background(), in)
	require.NoError(t, err)
	return p
}
