package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserUpsertHashesPassword(t *testing.T) {
	s := newStack(t, nil)
	svc := NewUserService(s.userRepo, nil)
	ctx := context.Background()

	u, err := svc.Upsert(ctx, UpsertUserInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.NotEqual(t, "secret1", u.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret1")))
}

func TestUserUpsertKeepsPasswordWhenOmitted(t *testing.T) {
	s := newStack(t, nil)
	svc := NewUserService(s.userRepo, nil)
	ctx := context.Background()

	u, err := svc.Upsert(ctx, UpsertUserInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	updated, err := svc.Upsert(ctx, UpsertUserInput{ID: u.ID, Username: "alice2", Email: "alice@example.com", Bio: "hi"})
	require.NoError(t, err)
	require.Equal(t, u.Password, updated.Password)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice2", got.Username)
	require.Equal(t, "hi", got.Bio)
}

func TestUserUpsertValidation(t *testing.T) {
	s := newStack(t, nil)
	svc := NewUserService(s.userRepo, nil)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, UpsertUserInput{Username: "x", Email: "alice@example.com"})
	require.Error(t, err) // username too short

	_, err = svc.Upsert(ctx, UpsertUserInput{Username: "alice", Email: "not-an-email"})
	require.Error(t, err)
}
