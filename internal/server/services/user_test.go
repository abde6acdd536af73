package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/memoir/internal/common"
	"github.com/dmitrijs2005/memoir/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.False(t, u.IsVerified)
	require.NotNil(t, u.VerificationToken)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	_, err = f.users.Register(ctx, RegisterInput{Username: "ANN", Email: "other@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = f.users.Register(ctx, RegisterInput{Username: "bob", Email: "Ann@Example.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = f.users.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "123"})
	assert.ErrorIs(t, err, common.ErrorValidation)

	pair, user, err := f.users.Login(ctx, "ann", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	actor, err := f.users.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, actor.UserID)

	_, _, err = f.users.Login(ctx, "ann", "wrong-pass")
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
	_, _, err = f.users.Login(ctx, "nobody", "secret1")
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
}

func TestAuthenticate_RoleReloaded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	pair, user, err := f.users.Login(ctx, "ann", "secret1")
	require.NoError(t, err)

	admin := models.RoleAdmin
	_, err = f.rm.Users(nil).Update(ctx, user.ID, models.UserPatch{Role: &admin})
	require.NoError(t, err)

	actor, err := f.users.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.True(t, actor.IsAdmin(), "role changes apply to issued tokens")

	require.NoError(t, f.rm.Users(nil).Delete(ctx, user.ID))
	_, err = f.users.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	_, err = f.users.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefreshToken_Rotates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.users.Register(ctx, RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	pair, _, err := f.users.Login(ctx, "ann", "secret1")
	require.NoError(t, err)

	next, err := f.users.RefreshToken(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = f.users.RefreshToken(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken, "old refresh token is single use")

	require.NoError(t, f.users.Logout(ctx, next.RefreshToken))
	_, err = f.users.RefreshToken(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestRefreshToken_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	actor := f.register(t, "ann", models.RoleUser)
	require.NoError(t, f.rm.RefreshTokens(nil).Create(ctx, actor.UserID, "old", -time.Minute))

	_, err := f.users.RefreshToken(ctx, "old")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)

	_, err = f.rm.RefreshTokens(nil).Find(ctx, "old")
	assert.ErrorIs(t, err, common.ErrorNotFound, "expired token is consumed")

	_, err = f.users.RefreshToken(ctx, "old")
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Register(ctx, RegisterInput{Username: "ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	verified, err := f.users.Verify(ctx, *u.VerificationToken)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.Nil(t, verified.VerificationToken)

	_, err = f.users.Verify(ctx, *u.VerificationToken)
	assert.ErrorIs(t, err, common.ErrorNotFound, "tokens are one-time")
}

func TestCurrentAndProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ann := f.register(t, "ann", models.RoleUser)
	bob := f.register(t, "bob", models.RoleUser)
	admin := f.register(t, "root", models.RoleAdmin)

	_, err := f.users.Current(ctx, nil)
	assert.ErrorIs(t, err, common.ErrorUnauthenticated)

	me, err := f.users.Current(ctx, ann)
	require.NoError(t, err)
	assert.Equal(t, "ann", me.Username)

	profile, err := f.users.GetProfile(ctx, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Username)

	_, err = f.users.UpdateProfile(ctx, nil, ann.UserID, ProfileUpdate{Bio: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrorUnauthenticated)

	_, err = f.users.UpdateProfile(ctx, bob, 999, ProfileUpdate{Bio: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = f.users.UpdateProfile(ctx, bob, ann.UserID, ProfileUpdate{Bio: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrorForbidden)

	updated, err := f.users.UpdateProfile(ctx, ann, ann.UserID, ProfileUpdate{Bio: strPtr("hello")})
	require.NoError(t, err)
	assert.Equal(t, "hello", *updated.Bio)
	assert.Equal(t, models.RoleUser, updated.Role)

	_, err = f.users.UpdateProfile(ctx, admin, ann.UserID, ProfileUpdate{FirstName: strPtr("Ann")})
	require.NoError(t, err)

	_, err = f.users.UpdateProfile(ctx, ann, ann.UserID, ProfileUpdate{Email: strPtr("BOB@example.com")})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestAdminOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ann := f.register(t, "ann", models.RoleUser)
	admin := f.register(t, "root", models.RoleAdmin)

	_, err := f.users.ListUsers(ctx, nil)
	assert.ErrorIs(t, err, common.ErrorUnauthenticated)
	_, err = f.users.ListUsers(ctx, ann)
	assert.ErrorIs(t, err, common.ErrorForbidden)

	all, err := f.users.ListUsers(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	user, adminRole, bogus := models.RoleUser, models.RoleAdmin, models.Role("root")

	_, err = f.users.AdminUpdateUser(ctx, admin, admin.UserID, AdminUserUpdate{Role: &user})
	assert.ErrorIs(t, err, common.ErrorSelfAction)

	_, err = f.users.AdminUpdateUser(ctx, admin, ann.UserID, AdminUserUpdate{Role: &bogus})
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.users.AdminUpdateUser(ctx, admin, 999, AdminUserUpdate{Role: &adminRole})
	assert.ErrorIs(t, err, common.ErrorNotFound)

	verified := true
	promoted, err := f.users.AdminUpdateUser(ctx, admin, ann.UserID, AdminUserUpdate{Role: &adminRole, IsVerified: &verified})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)
	assert.True(t, promoted.IsVerified)

	assert.ErrorIs(t, f.users.AdminDeleteUser(ctx, admin, admin.UserID), common.ErrorSelfAction)
	require.NoError(t, f.users.AdminDeleteUser(ctx, admin, ann.UserID))
	assert.ErrorIs(t, f.users.AdminDeleteUser(ctx, admin, ann.UserID), common.ErrorNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, created, err := f.users.EnsureAdmin(ctx, "root", "root@example.com", "secret1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, u.IsVerified)

	_, _, err = f.users.Login(ctx, "root", "secret1")
	require.NoError(t, err)

	f.register(t, "ann", models.RoleUser)
	u, created, err = f.users.EnsureAdmin(ctx, "ann", "", "")
	require.NoError(t, err)
	assert.False(t, created, "existing accounts are promoted")
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, _, err = f.users.EnsureAdmin(ctx, "new", "new@example.com", "123")
	assert.ErrorIs(t, err, common.ErrorValidation)
}
