package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Phone    string
	Address  string
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	EnsureAdmin(ctx context.Context, input RegisterInput) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	if input.Password == "" {
		return nil, errors.New("service: password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	u := &User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Phone:        input.Phone,
		Address:      input.Address,
	}

	if _, err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		log.Error().Err(err).Str("username", input.Username).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("service: user registered")
	return u, nil
}

// Authenticate answers the same error for an unknown username and a
// wrong password so the response does not leak which part failed.
func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Str("username", username).Msg("service: failed to fetch user for authentication")
		return nil, fmt.Errorf("service: failed to fetch user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Int64("user_id", id).Msg("service: failed to fetch user by id")
		return nil, fmt.Errorf("service: failed to fetch user by id: %w", err)
	}

	return u, nil
}

// EnsureAdmin creates the bootstrap admin account if it does not exist
// yet. Called once at startup.
func (s *service) EnsureAdmin(ctx context.Context, input RegisterInput) error {
	_, err := s.repo.GetByUsername(ctx, input.Username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("service: failed to check for admin user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("service: failed to hash admin password: %w", err)
	}

	u := &User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Phone:        input.Phone,
		Address:      input.Address,
		IsAdmin:      true,
	}
	if _, err := s.repo.Create(ctx, u); err != nil {
		// Another instance may have won the race; duplicates are fine.
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken) {
			return nil
		}
		return fmt.Errorf("service: failed to create admin user: %w", err)
	}

	log.Info().Str("username", input.Username).Msg("service: bootstrap admin user created")
	return nil
}
