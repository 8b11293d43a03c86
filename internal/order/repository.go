package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrOrderNotFound = errors.New("order not found")

type Repository interface {
	Create(ctx context.Context, order *Order) (int64, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, orderID int64, newStatus Status) error
	ListAll(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID int64) ([]Order, error)
	Summary(ctx context.Context) (*Summary, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// Create inserts the order and all of its items in one transaction:
// either the full set of rows commits or none do. A partially visible
// order (total computed from N items, fewer item rows persisted) would
// violate the checkout contract.
func (r *postgresRepository) Create(ctx context.Context, orderInput *Order) (orderID int64, err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return 0, fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic_value", p).Msg("Panic recovered during order Create, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			log.Warn().Err(err).Msg("Transaction for order Create failed, rolling back")
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Int64("order_id", orderID).Msg("Failed to commit transaction")
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
				orderID = 0
			}
		}
	}()

	createdAt := time.Now().UTC()

	queryOrder := `
		INSERT INTO orders (user_id, total_amount, status, delivery_address, customer_name, customer_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = tx.QueryRow(ctx, queryOrder,
		orderInput.UserID,
		orderInput.TotalAmount,
		string(orderInput.Status),
		orderInput.DeliveryAddress,
		orderInput.CustomerName,
		orderInput.CustomerPhone,
		createdAt,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("repository: failed to insert order: %w", err)
	}
	orderInput.ID = orderID
	orderInput.CreatedAt = createdAt

	queryItem := `
		INSERT INTO order_items (order_id, menu_item_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for i := range orderInput.Items {
		item := &orderInput.Items[i]
		item.OrderID = orderID

		err = tx.QueryRow(ctx, queryItem,
			orderID,
			item.MenuItemID,
			item.Quantity,
			item.Price,
		).Scan(&item.ID)
		if err != nil {
			return 0, fmt.Errorf("repository: failed to insert order item for order %d: %w", orderID, err)
		}
	}

	return orderID, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, delivery_address, customer_name, customer_phone, created_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.TotalAmount,
		&o.Status,
		&o.DeliveryAddress,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %d: %w", id, err)
	}

	o.Items = make([]OrderItem, 0)
	if err := r.attachItems(ctx, map[int64]*Order{o.ID: &o}, []int64{o.ID}); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID int64, newStatus Status) error {
	query := `
		UPDATE orders
		SET status = $1
		WHERE id = $2
	`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), orderID)
	if err != nil {
		log.Error().Err(err).Int64("order_id", orderID).Str("new_status", string(newStatus)).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update order status for order %d: %w", orderID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		log.Warn().Int64("order_id", orderID).Str("new_status", string(newStatus)).Msg("repository: order not found for status update")
		return ErrOrderNotFound
	}

	return nil
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, delivery_address, customer_name, customer_phone, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query)
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID int64) ([]Order, error) {
	query := `
		SELECT id, user_id, total_amount, status, delivery_address, customer_name, customer_phone, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, userID)
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	ordersMap := make(map[int64]*Order)
	var orderIDs []int64

	for rows.Next() {
		var o Order
		err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.TotalAmount,
			&o.Status,
			&o.DeliveryAddress,
			&o.CustomerName,
			&o.CustomerPhone,
			&o.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]OrderItem, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	if err := r.attachItems(ctx, ordersMap, orderIDs); err != nil {
		return nil, err
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		result = append(result, *ordersMap[id])
	}

	return result, nil
}

func (r *postgresRepository) attachItems(ctx context.Context, ordersMap map[int64]*Order, orderIDs []int64) error {
	query := `
		SELECT id, order_id, menu_item_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.MenuItemID,
			&item.Quantity,
			&item.Price,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if o, ok := ordersMap[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating order items: %w", err)
	}

	return nil
}

// Summary aggregates the admin dashboard numbers. Revenue is zero, not
// NULL, when no orders exist.
func (r *postgresRepository) Summary(ctx context.Context) (*Summary, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COALESCE(SUM(total_amount), 0)
		FROM orders
	`

	var s Summary
	err := r.db.QueryRow(ctx, query).Scan(&s.TotalOrders, &s.PendingOrders, &s.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order summary: %w", err)
	}

	return &s, nil
}
