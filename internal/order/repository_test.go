package order_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/food-ordering/internal/order"
)

var testDB *pgxpool.Pool

// TestMain connects to a migrated local database. The repository tests
// are skipped when DB_HOST_TEST is not set.
func TestMain(m *testing.M) {
	dbHost := os.Getenv("DB_HOST_TEST")
	if dbHost == "" {
		os.Exit(m.Run())
	}

	dbPort := getEnvDefault("DB_PORT_TEST", "5432")
	dbUser := getEnvDefault("DB_USER_TEST", "postgres")
	dbPassword := getEnvDefault("DB_PASSWORD_TEST", "postgres")
	dbName := getEnvDefault("DB_NAME_TEST", "food_ordering_test")
	dbSSLMode := getEnvDefault("DB_SSLMODE_TEST", "disable")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse test database config: %v\n", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = 5

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	testDB, err = pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to test database: %v\n", err)
		os.Exit(1)
	}

	exitCode := m.Run()
	testDB.Close()
	os.Exit(exitCode)
}

func getEnvDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("DB_HOST_TEST not set, skipping repository tests")
	}
}

func truncateOrderTables(tb testing.TB) {
	tb.Helper()
	_, err := testDB.Exec(context.Background(),
		"TRUNCATE TABLE order_items, orders, menu_items, categories, users RESTART IDENTITY CASCADE")
	require.NoError(tb, err, "failed to truncate order tables")
}

func insertUser(tb testing.TB, username string) int64 {
	tb.Helper()
	var id int64
	err := testDB.QueryRow(context.Background(),
		`INSERT INTO users (username, email, password) VALUES ($1, $1 || '@example.com', 'x') RETURNING id`,
		username).Scan(&id)
	require.NoError(tb, err)
	return id
}

func insertMenuItem(tb testing.TB, name, price string) int64 {
	tb.Helper()
	var categoryID int64
	err := testDB.QueryRow(context.Background(),
		`INSERT INTO categories (name) VALUES ('Test') RETURNING id`).Scan(&categoryID)
	require.NoError(tb, err)

	var id int64
	err = testDB.QueryRow(context.Background(),
		`INSERT INTO menu_items (name, price, category_id) VALUES ($1, $2, $3) RETURNING id`,
		name, price, categoryID).Scan(&id)
	require.NoError(tb, err)
	return id
}

func TestRepository_CreateAndGetByID(t *testing.T) {
	requireDB(t)
	t.Cleanup(func() { truncateOrderTables(t) })

	repo := order.NewRepository(testDB)
	userID := insertUser(t, "alice")
	itemID := insertMenuItem(t, "Margherita Pizza", "12.99")

	o := &order.Order{
		UserID:          &userID,
		TotalAmount:     decimal.RequireFromString("25.98"),
		Status:          order.StatusPending,
		DeliveryAddress: "1 Main St",
		CustomerName:    "Alice",
		CustomerPhone:   "1234567890",
		Items: []order.OrderItem{
			{MenuItemID: itemID, Quantity: 2, Price: decimal.RequireFromString("12.99")},
		},
	}

	orderID, err := repo.Create(context.Background(), o)
	require.NoError(t, err)
	require.NotZero(t, orderID)

	got, err := repo.GetByID(context.Background(), orderID)
	require.NoError(t, err)

	assert.Equal(t, order.StatusPending, got.Status)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("25.98")))
	require.Len(t, got.Items, 1)
	assert.Equal(t, itemID, got.Items[0].MenuItemID)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("12.99")))
}

// An order's stored line prices must not follow later menu price
// changes.
func TestRepository_OrderPriceIsImmuneToMenuChanges(t *testing.T) {
	requireDB(t)
	t.Cleanup(func() { truncateOrderTables(t) })

	repo := order.NewRepository(testDB)
	userID := insertUser(t, "alice")
	itemID := insertMenuItem(t, "Coca Cola", "2.99")

	o := &order.Order{
		UserID:          &userID,
		TotalAmount:     decimal.RequireFromString("2.99"),
		Status:          order.StatusPending,
		DeliveryAddress: "1 Main St",
		CustomerName:    "Alice",
		CustomerPhone:   "1234567890",
		Items: []order.OrderItem{
			{MenuItemID: itemID, Quantity: 1, Price: decimal.RequireFromString("2.99")},
		},
	}
	orderID, err := repo.Create(context.Background(), o)
	require.NoError(t, err)

	_, err = testDB.Exec(context.Background(), `UPDATE menu_items SET price = 9.99 WHERE id = $1`, itemID)
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.True(t, got.Items[0].Price.Equal(decimal.RequireFromString("2.99")))
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("2.99")))
}

func TestRepository_UpdateStatus(t *testing.T) {
	requireDB(t)
	t.Cleanup(func() { truncateOrderTables(t) })

	repo := order.NewRepository(testDB)
	userID := insertUser(t, "alice")

	o := &order.Order{
		UserID:          &userID,
		TotalAmount:     decimal.Zero,
		Status:          order.StatusPending,
		DeliveryAddress: "1 Main St",
		CustomerName:    "Alice",
		CustomerPhone:   "1234567890",
	}
	orderID, err := repo.Create(context.Background(), o)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(context.Background(), orderID, order.StatusReady))

	got, err := repo.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusReady, got.Status)

	err = repo.UpdateStatus(context.Background(), orderID+1000, order.StatusReady)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestRepository_ListByUser_NewestFirstWithIDTieBreak(t *testing.T) {
	requireDB(t)
	t.Cleanup(func() { truncateOrderTables(t) })

	repo := order.NewRepository(testDB)
	aliceID := insertUser(t, "alice")
	bobID := insertUser(t, "bob")

	mk := func(userID int64) int64 {
		o := &order.Order{
			UserID:          &userID,
			TotalAmount:     decimal.Zero,
			Status:          order.StatusPending,
			DeliveryAddress: "1 Main St",
			CustomerName:    "x",
			CustomerPhone:   "1",
		}
		id, err := repo.Create(context.Background(), o)
		require.NoError(t, err)
		return id
	}

	first := mk(aliceID)
	second := mk(aliceID)
	mk(bobID)

	got, err := repo.ListByUser(context.Background(), aliceID)
	require.NoError(t, err)

	// Newest first; creation timestamps may collide, so the serial id
	// breaks the tie.
	require.Len(t, got, 2)
	assert.Equal(t, second, got[0].ID)
	assert.Equal(t, first, got[1].ID)

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepository_Summary(t *testing.T) {
	requireDB(t)
	t.Cleanup(func() { truncateOrderTables(t) })

	repo := order.NewRepository(testDB)

	empty, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, empty.TotalOrders)
	assert.Zero(t, empty.PendingOrders)
	assert.True(t, empty.TotalRevenue.IsZero())

	userID := insertUser(t, "alice")
	mk := func(status order.Status, total string) {
		o := &order.Order{
			UserID:          &userID,
			TotalAmount:     decimal.RequireFromString(total),
			Status:          status,
			DeliveryAddress: "1 Main St",
			CustomerName:    "x",
			CustomerPhone:   "1",
		}
		_, err := repo.Create(context.Background(), o)
		require.NoError(t, err)
	}
	mk(order.StatusPending, "28.97")
	mk(order.StatusPending, "5.99")
	mk(order.StatusDelivered, "27.98")

	got, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalOrders)
	assert.Equal(t, 2, got.PendingOrders)
	assert.True(t, got.TotalRevenue.Equal(decimal.RequireFromString("62.94")))
}
