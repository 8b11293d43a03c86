package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/vasiliy-maslov/food-ordering/internal/auth"
	"github.com/vasiliy-maslov/food-ordering/internal/catalog"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrInvalidStatus = errors.New("invalid order status")
)

// CartStore is the session cart slice checkout consumes: the raw
// entries to convert and the clear-on-success hook.
type CartStore interface {
	Entries(userID int64) map[int64]int
	Clear(userID int64)
}

type Catalog interface {
	GetItem(ctx context.Context, id int64) (*catalog.MenuItem, error)
}

type CheckoutInput struct {
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
}

type Service interface {
	Checkout(ctx context.Context, identity auth.Identity, input CheckoutInput) (int64, error)
	GetByID(ctx context.Context, identity auth.Identity, orderID int64) (*Order, error)
	List(ctx context.Context, identity auth.Identity) ([]Order, error)
	SetStatus(ctx context.Context, identity auth.Identity, orderID int64, rawStatus string) (Status, error)
	Summary(ctx context.Context, identity auth.Identity) (*Summary, error)
}

type service struct {
	repo    Repository
	carts   CartStore
	catalog Catalog
}

func NewService(repo Repository, carts CartStore, catalog Catalog) Service {
	return &service{repo: repo, carts: carts, catalog: catalog}
}

// Checkout converts the user's cart into a persisted order. Cart
// entries whose item no longer resolves are skipped, matching the cart
// view; the order's total and line items reflect only items still in
// the catalog at this moment. Each line freezes the item's current
// price. The cart is cleared only after the order committed, so a
// failed checkout can be retried with the cart intact.
func (s *service) Checkout(ctx context.Context, identity auth.Identity, input CheckoutInput) (int64, error) {
	entries := s.carts.Entries(identity.UserID)
	if len(entries) == 0 {
		log.Warn().Int64("user_id", identity.UserID).Msg("service: checkout attempted with empty cart")
		return 0, ErrEmptyCart
	}

	itemIDs := make([]int64, 0, len(entries))
	for itemID := range entries {
		itemIDs = append(itemIDs, itemID)
	}
	sort.Slice(itemIDs, func(i, j int) bool { return itemIDs[i] < itemIDs[j] })

	totalAmount := decimal.Zero
	items := make([]OrderItem, 0, len(entries))
	for _, itemID := range itemIDs {
		item, err := s.catalog.GetItem(ctx, itemID)
		if err != nil {
			if errors.Is(err, catalog.ErrItemNotFound) {
				continue
			}
			return 0, fmt.Errorf("service: failed to resolve cart item %d: %w", itemID, err)
		}

		qty := entries[itemID]
		items = append(items, OrderItem{
			MenuItemID: item.ID,
			Quantity:   qty,
			Price:      item.Price,
		})
		totalAmount = totalAmount.Add(item.Price.Mul(decimal.NewFromInt(int64(qty))))
	}

	userID := identity.UserID
	o := &Order{
		UserID:          &userID,
		TotalAmount:     totalAmount,
		Status:          StatusPending,
		DeliveryAddress: input.DeliveryAddress,
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		Items:           items,
	}

	orderID, err := s.repo.Create(ctx, o)
	if err != nil {
		log.Error().Err(err).Int64("user_id", identity.UserID).Msg("service: failed to create order in repository")
		return 0, fmt.Errorf("service: failed to create order: %w", err)
	}

	s.carts.Clear(identity.UserID)

	log.Info().Int64("order_id", orderID).Int64("user_id", identity.UserID).
		Str("total_amount", totalAmount.StringFixed(2)).Int("items", len(items)).
		Msg("service: order created successfully")

	return orderID, nil
}

func (s *service) GetByID(ctx context.Context, identity auth.Identity, orderID int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Int64("order_id", orderID).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	// Non-admins only ever see their own orders.
	if !identity.IsAdmin && (o.UserID == nil || *o.UserID != identity.UserID) {
		return nil, ErrOrderNotFound
	}

	return o, nil
}

// List returns all orders for admins and only the identity's own
// orders otherwise, newest first.
func (s *service) List(ctx context.Context, identity auth.Identity) ([]Order, error) {
	var (
		orders []Order
		err    error
	)
	if identity.IsAdmin {
		orders, err = s.repo.ListAll(ctx)
	} else {
		orders, err = s.repo.ListByUser(ctx, identity.UserID)
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", identity.UserID).Bool("is_admin", identity.IsAdmin).
			Msg("service: failed to fetch orders in repository")
		return nil, fmt.Errorf("service: failed to fetch orders: %w", err)
	}

	return orders, nil
}

// SetStatus assigns any of the four statuses to an order. Assignment
// is deliberately unguarded: there is no forward-only transition rule,
// only membership in the status set.
func (s *service) SetStatus(ctx context.Context, identity auth.Identity, orderID int64, rawStatus string) (Status, error) {
	if !identity.IsAdmin {
		log.Warn().Int64("user_id", identity.UserID).Int64("order_id", orderID).
			Msg("service: non-admin attempted status update")
		return "", auth.ErrUnauthorized
	}

	newStatus, err := ParseStatus(rawStatus)
	if err != nil {
		log.Warn().Int64("order_id", orderID).Str("raw_status", rawStatus).Msg("service: rejected unknown order status")
		return "", err
	}

	if err := s.repo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return "", ErrOrderNotFound
		}
		log.Error().Err(err).Int64("order_id", orderID).Str("new_status", string(newStatus)).
			Msg("service: failed to update order status in repository")
		return "", fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Int64("order_id", orderID).Str("new_status", string(newStatus)).Msg("service: order status updated")
	return newStatus, nil
}

func (s *service) Summary(ctx context.Context, identity auth.Identity) (*Summary, error) {
	if !identity.IsAdmin {
		return nil, auth.ErrUnauthorized
	}

	summary, err := s.repo.Summary(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch order summary in repository")
		return nil, fmt.Errorf("service: failed to fetch order summary: %w", err)
	}

	return summary, nil
}
