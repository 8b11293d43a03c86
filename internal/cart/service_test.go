package cart_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/food-ordering/internal/cart"
	"github.com/vasiliy-maslov/food-ordering/internal/catalog"
)

type mockCatalog struct {
	items map[int64]catalog.MenuItem
	err   error
}

func (m *mockCatalog) GetItem(_ context.Context, id int64) (*catalog.MenuItem, error) {
	if m.err != nil {
		return nil, m.err
	}
	item, ok := m.items[id]
	if !ok {
		return nil, catalog.ErrItemNotFound
	}
	return &item, nil
}

func menuItem(id int64, price string) catalog.MenuItem {
	return catalog.MenuItem{
		ID:          id,
		Name:        "item",
		Price:       decimal.RequireFromString(price),
		IsAvailable: true,
	}
}

func TestService_Snapshot(t *testing.T) {
	store := cart.NewStore()
	svc := cart.NewService(store, &mockCatalog{items: map[int64]catalog.MenuItem{
		1: menuItem(1, "12.99"),
		2: menuItem(2, "2.99"),
	}})

	store.Add(7, 1)
	store.Add(7, 1)
	store.Add(7, 2)

	lines, total, err := svc.Snapshot(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].Item.ID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.True(t, lines[0].LineTotal.Equal(decimal.RequireFromString("25.98")))
	assert.Equal(t, int64(2), lines[1].Item.ID)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.True(t, total.Equal(decimal.RequireFromString("28.97")))
}

func TestService_Snapshot_SkipsDanglingItems(t *testing.T) {
	store := cart.NewStore()
	svc := cart.NewService(store, &mockCatalog{items: map[int64]catalog.MenuItem{
		1: menuItem(1, "5.00"),
	}})

	store.Add(7, 1)
	store.Add(7, 999) // deleted from the catalog since it was added

	lines, total, err := svc.Snapshot(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Equal(t, int64(1), lines[0].Item.ID)
	assert.True(t, total.Equal(decimal.RequireFromString("5.00")))
}

func TestService_Snapshot_EmptyCart(t *testing.T) {
	svc := cart.NewService(cart.NewStore(), &mockCatalog{})

	lines, total, err := svc.Snapshot(context.Background(), 7)
	require.NoError(t, err)

	assert.Empty(t, lines)
	assert.True(t, total.IsZero())
}

func TestService_Snapshot_CatalogError(t *testing.T) {
	store := cart.NewStore()
	catalogErr := errors.New("connection refused")
	svc := cart.NewService(store, &mockCatalog{err: catalogErr})

	store.Add(7, 1)

	_, _, err := svc.Snapshot(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalogErr))
}
