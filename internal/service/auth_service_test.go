package service

import (
	"context"
	"errors"
	"testing"

	"delipos/internal/dto"
	"delipos/internal/model"
	"delipos/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserRepo is an in-memory UserRepository for testing.
type stubUserRepo struct {
	users map[string]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.Username] = u
	return nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := r.users[username]
	if !ok || !u.Active {
		return nil, errors.New("not found")
	}
	return u, nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

func TestLoginRoundTrip(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "test-secret", 8)
	ctx := context.Background()

	require.NoError(t, svc.CreateUser(ctx, dto.CreateUserRequest{
		Username: "maria", Name: "Maria", Password: "correct-horse", Role: "manager",
	}))

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "maria", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "manager", resp.Role)
	assert.Equal(t, 8*3600, resp.ExpiresIn)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "Maria", claims.Name)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, resp.UserID, claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "test-secret", 8)
	ctx := context.Background()

	require.NoError(t, svc.CreateUser(ctx, dto.CreateUserRequest{
		Username: "maria", Name: "Maria", Password: "correct-horse", Role: "cashier",
	}))

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "maria", Password: "wrong"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nobody", Password: "x"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret-a", 8)
	other := NewAuthService(repo, "secret-b", 8)
	ctx := context.Background()

	require.NoError(t, svc.CreateUser(ctx, dto.CreateUserRequest{
		Username: "maria", Name: "Maria", Password: "correct-horse", Role: "cashier",
	}))
	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "maria", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = other.ValidateToken(resp.Token)
	assert.Error(t, err)
	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
