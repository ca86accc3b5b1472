package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/models"
)

func ptr[T any](v T) *T { return &v }

func principalOf(u *models.User) Principal {
	return Principal{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func TestUserService_Update_Self(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := env.registerAndLogin(t, testEmail)

	updated, err := env.users.Update(ctx, principalOf(user), user.ID, UpdateInput{
		Name:     ptr("Alicia"),
		Email:    ptr(" Alicia@X.com"),
		Password: ptr("N3wpassword"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.Name)
	assert.Equal(t, "alicia@x.com", updated.Email)

	_, err = env.auth.Authenticate(ctx, "alicia@x.com", testPassword)
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = env.auth.Authenticate(ctx, "alicia@x.com", "N3wpassword")
	assert.NoError(t, err)

	assert.Contains(t, env.pub.Types(), events.TypeUserUpdated)
}

func TestUserService_Update_Rules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, _ := env.registerAndLogin(t, testEmail)
	bob, _ := env.registerAndLogin(t, "b@x.com")

	admin := &models.User{Email: "root@x.com", PasswordHash: "x", Name: "Root", Role: models.RoleAdmin}
	require.NoError(t, env.repo.CreateUser(ctx, admin))

	_, err := env.users.Update(ctx, principalOf(bob), alice.ID, UpdateInput{Name: ptr("Hacked")})
	assert.ErrorIs(t, err, ErrForbidden)

	staff := principalOf(bob)
	staff.Role = models.RoleManager
	_, err = env.users.Update(ctx, staff, alice.ID, UpdateInput{Name: ptr("Hacked")})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := env.users.Update(ctx, principalOf(admin), alice.ID, UpdateInput{Name: ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	_, err = env.users.Update(ctx, principalOf(bob), bob.ID, UpdateInput{Email: ptr(testEmail)})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = env.users.Update(ctx, principalOf(bob), bob.ID, UpdateInput{})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.users.Update(ctx, principalOf(bob), bob.ID, UpdateInput{Password: ptr("short")})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.users.Update(ctx, principalOf(admin), uuid.New(), UpdateInput{Name: ptr("Ghost")})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_GetListDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice, _ := env.registerAndLogin(t, testEmail)
	bob, _ := env.registerAndLogin(t, "b@x.com")

	users, total, err := env.users.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, int64(2), total)

	users, _, err = env.users.List(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, bob.ID, users[0].ID)

	got, err := env.users.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, testEmail, got.Email)

	assert.ErrorIs(t, env.users.Delete(ctx, principalOf(bob), alice.ID), ErrForbidden)
	require.NoError(t, env.users.Delete(ctx, principalOf(alice), alice.ID))

	_, err = env.users.Get(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.Contains(t, env.pub.Types(), events.TypeUserDeleted)
}
