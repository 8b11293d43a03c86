package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")
)

type Repository interface {
	Create(ctx context.Context, u *User) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, u *User) (int64, error) {
	query := `
		INSERT INTO users (username, email, password, phone, address, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	createdAt := time.Now().UTC()

	var id int64
	err := r.db.QueryRow(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.Phone,
		u.Address,
		u.IsAdmin,
		createdAt,
	).Scan(&id)
	if err != nil {
		if dupErr := mapUniqueViolation(err); dupErr != nil {
			return 0, dupErr
		}
		return 0, fmt.Errorf("repository: failed to insert user: %w", err)
	}

	u.ID = id
	u.CreatedAt = createdAt

	return id, nil
}

// mapUniqueViolation turns Postgres unique-violation errors on the
// users table into the taken/registered sentinels, keyed off the
// constraint name.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return ErrUsernameTaken
	case strings.Contains(pgErr.ConstraintName, "email"):
		return ErrEmailTaken
	default:
		return nil
	}
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, username, email, password, COALESCE(phone, ''), COALESCE(address, ''), is_admin, created_at
		FROM users
		WHERE id = $1
	`
	return r.get(ctx, query, id)
}

func (r *postgresRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, email, password, COALESCE(phone, ''), COALESCE(address, ''), is_admin, created_at
		FROM users
		WHERE username = $1
	`
	return r.get(ctx, query, username)
}

func (r *postgresRepository) get(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.Phone,
		&u.Address,
		&u.IsAdmin,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user: %w", err)
	}

	return &u, nil
}
