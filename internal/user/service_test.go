package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/food-ordering/internal/user"
	"golang.org/x/crypto/bcrypt"
)

type mockRepository struct {
	createFunc        func(ctx context.Context, u *user.User) (int64, error)
	getByIDFunc       func(ctx context.Context, id int64) (*user.User, error)
	getByUsernameFunc func(ctx context.Context, username string) (*user.User, error)
}

func (m *mockRepository) Create(ctx context.Context, u *user.User) (int64, error) {
	return m.createFunc(ctx, u)
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return m.getByUsernameFunc(ctx, username)
}

func TestService_Register_HashesPassword(t *testing.T) {
	var saved *user.User
	repo := &mockRepository{
		createFunc: func(ctx context.Context, u *user.User) (int64, error) {
			saved = u
			u.ID = 1
			return 1, nil
		},
	}
	svc := user.NewService(repo)

	created, err := svc.Register(context.Background(), user.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret123",
		Phone:    "1234567890",
	})
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.NotEqual(t, "secret123", saved.PasswordHash, "password must never be stored in plaintext")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("secret123")))
	assert.False(t, created.IsAdmin)
}

func TestService_Register_EmptyPassword(t *testing.T) {
	svc := user.NewService(&mockRepository{})

	_, err := svc.Register(context.Background(), user.RegisterInput{Username: "alice"})
	assert.Error(t, err)
}

func TestService_Register_DuplicateErrorsPassThrough(t *testing.T) {
	for _, sentinel := range []error{user.ErrUsernameTaken, user.ErrEmailTaken} {
		repo := &mockRepository{
			createFunc: func(ctx context.Context, u *user.User) (int64, error) {
				return 0, sentinel
			},
		}
		svc := user.NewService(repo)

		_, err := svc.Register(context.Background(), user.RegisterInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "secret123",
		})
		assert.ErrorIs(t, err, sentinel)
	}
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &user.User{ID: 1, Username: "alice", PasswordHash: string(hash)}

	repo := &mockRepository{
		getByUsernameFunc: func(ctx context.Context, username string) (*user.User, error) {
			if username == "alice" {
				return stored, nil
			}
			return nil, user.ErrNotFound
		},
	}
	svc := user.NewService(repo)

	t.Run("success", func(t *testing.T) {
		u, err := svc.Authenticate(context.Background(), "alice", "secret123")
		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "alice", "wrong")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("unknown_user", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "bob", "secret123")
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})
}

func TestService_EnsureAdmin_SkipsExisting(t *testing.T) {
	createCalled := false
	repo := &mockRepository{
		getByUsernameFunc: func(ctx context.Context, username string) (*user.User, error) {
			return &user.User{ID: 1, Username: username, IsAdmin: true}, nil
		},
		createFunc: func(ctx context.Context, u *user.User) (int64, error) {
			createCalled = true
			return 2, nil
		},
	}
	svc := user.NewService(repo)

	err := svc.EnsureAdmin(context.Background(), user.RegisterInput{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.False(t, createCalled)
}

func TestService_EnsureAdmin_CreatesAdminFlag(t *testing.T) {
	var saved *user.User
	repo := &mockRepository{
		getByUsernameFunc: func(ctx context.Context, username string) (*user.User, error) {
			return nil, user.ErrNotFound
		},
		createFunc: func(ctx context.Context, u *user.User) (int64, error) {
			saved = u
			return 1, nil
		},
	}
	svc := user.NewService(repo)

	err := svc.EnsureAdmin(context.Background(), user.RegisterInput{
		Username: "admin",
		Email:    "admin@restaurant.com",
		Password: "admin123",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.IsAdmin)
	assert.False(t, errors.Is(bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("admin123")), bcrypt.ErrMismatchedHashAndPassword))
}
