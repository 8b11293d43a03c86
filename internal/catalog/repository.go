package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrItemNotFound = errors.New("menu item not found")

// Repository is the read-only catalog store: categories and the menu
// items the cart resolves against.
type Repository interface {
	ListCategories(ctx context.Context) ([]Category, error)
	ListItems(ctx context.Context, categoryID *int64) ([]MenuItem, error)
	GetItem(ctx context.Context, id int64) (*MenuItem, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	query := `
		SELECT id, name, COALESCE(description, '')
		FROM categories
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating categories: %w", err)
	}

	return categories, nil
}

// ListItems returns available menu items, optionally filtered by
// category.
func (r *postgresRepository) ListItems(ctx context.Context, categoryID *int64) ([]MenuItem, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), price, category_id, COALESCE(image_url, ''), is_available, created_at
		FROM menu_items
		WHERE is_available AND ($1::bigint IS NULL OR category_id = $1)
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := make([]MenuItem, 0)
	for rows.Next() {
		var item MenuItem
		err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.CategoryID,
			&item.ImageURL,
			&item.IsAvailable,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating menu items: %w", err)
	}

	return items, nil
}

func (r *postgresRepository) GetItem(ctx context.Context, id int64) (*MenuItem, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), price, category_id, COALESCE(image_url, ''), is_available, created_at
		FROM menu_items
		WHERE id = $1
	`

	var item MenuItem
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.CategoryID,
		&item.ImageURL,
		&item.IsAvailable,
		&item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("repository: failed to select menu item by id %d: %w", id, err)
	}

	return &item, nil
}
