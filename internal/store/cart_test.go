package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCartItemIncrementsExistingRow(t *testing.T) {
	t.Skip("Integration test - requires database")

	s := newTestStore(t)
	ctx := context.Background()

	userID := seedUser(t, s, "buyer@example.com")
	productID := seedProduct(t, s, "Widget", "1.00", 10)

	first, err := s.AddCartItem(ctx, userID, productID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)

	second, err := s.AddCartItem(ctx, userID, productID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Quantity)

	count, err := s.CountCartItems(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	t.Skip("Integration test - requires database")

	s := newTestStore(t)
	ctx := context.Background()

	userID := seedUser(t, s, "buyer@example.com")
	_, err := s.AddCartItem(ctx, userID, 999999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartOwnershipIsNotLeaked(t *testing.T) {
	t.Skip("Integration test - requires database")

	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	stranger := seedUser(t, s, "stranger@example.com")
	productID := seedProduct(t, s, "Widget", "1.00", 10)

	item, err := s.AddCartItem(ctx, owner, productID)
	require.NoError(t, err)

	// A stranger updating or deleting someone else's row sees the same
	// not-found as a row that does not exist.
	_, err = s.UpdateCartItemQuantity(ctx, stranger, item.ID, 3)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	err = s.DeleteCartItem(ctx, stranger, item.ID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	lines, err := s.GetCartLines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].Quantity)
}

func TestCartLinesReflectLiveCatalog(t *testing.T) {
	t.Skip("Integration test - requires database")

	s := newTestStore(t)
	ctx := context.Background()

	userID := seedUser(t, s, "buyer@example.com")
	productID := seedProduct(t, s, "Widget", "1.00", 10)

	_, err := s.AddCartItem(ctx, userID, productID)
	require.NoError(t, err)

	_, err = s.db.Exec("UPDATE products SET title = 'Renamed' WHERE id = $1", productID)
	require.NoError(t, err)

	lines, err := s.GetCartLines(ctx, userID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Renamed", lines[0].Product.Title)
}

func TestSearchProductsNoMatchReturnsEmpty(t *testing.T) {
	t.Skip("Integration test - requires database")

	s := newTestStore(t)
	ctx := context.Background()

	seedProduct(t, s, "Widget", "1.00", 10)

	products, err := s.SearchProducts(ctx, "no-such-thing")
	require.NoError(t, err)
	assert.Empty(t, products)

	matched, err := s.SearchProducts(ctx, "wIdG")
	require.NoError(t, err)
	assert.Len(t, matched, 1)
}
