package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusDelivered Status = "delivered"
)

func (s Status) String() string {
	return string(s)
}

// ParseStatus validates a raw status value. Any of the four statuses
// may be assigned at any time (there is no transition table), but
// values outside the set are rejected.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivered:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

type OrderItem struct {
	ID         int64 `json:"id"`
	OrderID    int64 `json:"order_id"`
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
	// Price is the menu item's price frozen at order time; later menu
	// price changes never touch it.
	Price decimal.Decimal `json:"price"`
}

type Order struct {
	ID int64 `json:"id"`
	// UserID is nullable: the schema admits guest orders even though
	// every current flow attaches the logged-in user.
	UserID          *int64          `json:"user_id,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Status          Status          `json:"status"`
	DeliveryAddress string          `json:"delivery_address"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	CreatedAt       time.Time       `json:"created_at"`
	Items           []OrderItem     `json:"items"`
}

// Summary is the admin dashboard aggregate.
type Summary struct {
	TotalOrders   int             `json:"total_orders"`
	PendingOrders int             `json:"pending_orders"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}
