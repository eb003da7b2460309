package service

import (
	"context"
	"testing"
	"time"

	"stockwise/internal/auth"
	"stockwise/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserServiceForTest(env *testEnv) *userService {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := NewUserService(env.users, &memAuditRepo{env.store}, &memTx{store: env.store}, tokens, 14*24*time.Hour)
	return svc.(*userService)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newUserServiceForTest(env)

	res, err := svc.Register(ctx, RegisterRequest{Email: " Alice@Example.com ", Password: "secret1", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.Equal(t, model.RoleStaff, res.User.Role)
	assert.NotEmpty(t, res.AccessToken)
	assert.Len(t, res.RefreshToken, 64)
	assert.EqualValues(t, 3600, res.ExpiresIn)

	claims, err := svc.tokens.Parse(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.String(), claims.UserID())
	assert.Equal(t, model.RoleStaff, claims.Role)

	stored := env.store.users[res.User.ID]
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	_, err = svc.Register(ctx, RegisterRequest{Email: "alice@example.com", Password: "another", Name: "Alice Two"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newUserServiceForTest(env)

	_, err := svc.Register(ctx, RegisterRequest{Email: "bob@example.com", Password: "hunter22", Name: "Bob"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "bob@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := svc.Login(ctx, LoginRequest{Email: "BOB@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.NotNil(t, res.User.LastLogin)
	assert.NotNil(t, env.store.users[res.User.ID].LastLogin)
}

func TestLogin_PrunesExpiredRefreshTokens(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newUserServiceForTest(env)

	res, err := svc.Register(ctx, RegisterRequest{Email: "bob@example.com", Password: "hunter22", Name: "Bob"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(30 * 24 * time.Hour) }
	_, err = svc.Login(ctx, LoginRequest{Email: "bob@example.com", Password: "hunter22"})
	require.NoError(t, err)

	assert.NotContains(t, env.store.tokens, res.RefreshToken)
	assert.Len(t, env.store.tokens, 1)
}

func TestRefresh_RotatesToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newUserServiceForTest(env)

	first, err := svc.Register(ctx, RegisterRequest{Email: "carol@example.com", Password: "secret1", Name: "Carol"})
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, first.User.ID, second.User.ID)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_Expired(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newUserServiceForTest(env)

	res, err := svc.Register(ctx, RegisterRequest{Email: "dave@example.com", Password: "secret1", Name: "Dave"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(15 * 24 * time.Hour) }
	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newUserServiceForTest(env)

	res, err := svc.Register(ctx, RegisterRequest{Email: "erin@example.com", Password: "secret1", Name: "Erin"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.RefreshToken))
	_, err = svc.Refresh(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	assert.NoError(t, svc.Logout(ctx, ""))
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newUserServiceForTest(env)
	admin := env.mustUser("Root", model.RoleAdmin)
	staff := env.mustUser("Frank", model.RoleStaff)

	updated, err := svc.UpdateRole(ctx, admin.ID.String(), staff.ID.String(), model.RoleManager)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, updated.Role)
	assert.Equal(t, model.RoleManager, env.store.users[staff.ID].Role)

	last := env.store.audits[len(env.store.audits)-1]
	assert.Equal(t, model.ActionUpdateUserRole, last.Action)
	assert.JSONEq(t, `{"from":"STAFF","to":"MANAGER"}`, last.Details)

	_, err = svc.UpdateRole(ctx, admin.ID.String(), staff.ID.String(), "OWNER")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.UpdateRole(ctx, admin.ID.String(), uuid.NewString(), model.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newUserServiceForTest(env)
	env.mustUser("Gina", model.RoleStaff)
	env.mustUser("Hank", model.RoleStaff)
	env.mustUser("Ivy", model.RoleStaff)

	users, total, err := svc.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, users, 1)
	assert.Equal(t, "Ivy", users[0].Name)

	got, err := svc.GetUserByID(ctx, users[0].ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ivy@stockwise.com", got.Email)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	svc := newUserServiceForTest(env)

	require.NoError(t, svc.EnsureAdmin(ctx, "", ""))
	assert.Empty(t, env.store.users)

	require.NoError(t, svc.EnsureAdmin(ctx, "Admin@Stockwise.com", "changeme"))
	res, err := svc.Login(ctx, LoginRequest{Email: "admin@stockwise.com", Password: "changeme"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, res.User.Role)

	// idempotent
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@stockwise.com", "other"))
	assert.Len(t, env.store.users, 1)

	staff := env.mustUser("Jill", model.RoleStaff)
	require.NoError(t, svc.EnsureAdmin(ctx, "jill@stockwise.com", "ignored"))
	assert.Equal(t, model.RoleAdmin, env.store.users[staff.ID].Role)
	last := env.store.audits[len(env.store.audits)-1]
	assert.Nil(t, last.UserID)
	assert.JSONEq(t, `{"from":"STAFF","to":"ADMIN"}`, last.Details)
}
