package cart

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/food-ordering/internal/catalog"
)

// Catalog is the slice of the catalog store the cart needs to resolve
// item ids into priced lines.
type Catalog interface {
	GetItem(ctx context.Context, id int64) (*catalog.MenuItem, error)
}

type Line struct {
	Item      catalog.MenuItem `json:"item"`
	Quantity  int              `json:"quantity"`
	LineTotal decimal.Decimal  `json:"line_total"`
}

type Service struct {
	store   *Store
	catalog Catalog
}

func NewService(store *Store, catalog Catalog) *Service {
	return &Service{store: store, catalog: catalog}
}

func (s *Service) Add(userID, itemID int64) {
	s.store.Add(userID, itemID)
}

func (s *Service) SetQuantity(userID, itemID int64, quantity int) {
	s.store.SetQuantity(userID, itemID, quantity)
}

// Snapshot resolves the cart against the catalog and returns priced
// lines in ascending item-id order plus their total. Entries whose id
// no longer resolves are skipped, not errors: the cart tolerates
// referential drift against the catalog.
func (s *Service) Snapshot(ctx context.Context, userID int64) ([]Line, decimal.Decimal, error) {
	entries := s.store.Entries(userID)

	itemIDs := make([]int64, 0, len(entries))
	for itemID := range entries {
		itemIDs = append(itemIDs, itemID)
	}
	sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })

	lines := make([]Line, 0, len(entries))
	total := decimal.Zero
	for _, itemID := range itemIDs {
		item, err := s.catalog.GetItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, catalog.ErrItemNotFound) {
				continue
			}
			return nil, decimal.Zero, fmt.Errorf("cart: failed to resolve item %d: %w", itemID, err)
		}

		qty := entries[itemID]
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(qty)))
		lines = append(lines, Line{Item: *item, Quantity: qty, LineTotal: lineTotal})
		total = total.Add(lineTotal)
	}

	return lines, total, nil
}
