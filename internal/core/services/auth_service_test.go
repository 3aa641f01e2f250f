package services

import (
	"errors"
	"testing"

	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(f *fixture) *AuthService {
	return NewAuthService(f.repos.Users, repositories.NewRefreshTokenRepository(f.db), testConfig())
}

func TestRegister_CreatesClient(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)

	res, err := auth.Register(f.ctx, &RegisterInput{Name: "Ana", Email: "ANA@example.com", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, res.User.Role)
	assert.Equal(t, "ana@example.com", res.User.Email)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	claims, err := auth.ValidateAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, string(domain.RoleClient), claims.Role)

	_, err = auth.Register(f.ctx, &RegisterInput{Name: "Ana 2", Email: "ana@example.com", Password: "secreto123"})
	assert.True(t, errors.Is(err, domain.ErrEmailAlreadyExists))
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)

	_, err := auth.Register(f.ctx, &RegisterInput{Name: "Ana", Email: "no-at-sign", Password: "secreto123"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = auth.Register(f.ctx, &RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "short1"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = auth.Register(f.ctx, &RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "12345678"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)
	reg, err := auth.Register(f.ctx, &RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)

	u, err := auth.Authenticate(f.ctx, "ANA@example.com", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, u.ID)

	_, err = auth.Authenticate(f.ctx, "ana@example.com", "wrong")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	_, err = auth.Authenticate(f.ctx, "nobody@example.com", "secreto123")
	assert.True(t, errors.Is(err, domain.ErrInvalidCredentials))

	require.NoError(t, f.repos.Users.Deactivate(f.ctx, reg.User.ID))
	_, err = auth.Authenticate(f.ctx, "ana@example.com", "secreto123")
	assert.True(t, errors.Is(err, domain.ErrUserInactive))

	_, err = auth.CurrentRole(f.ctx, reg.User.ID)
	assert.True(t, errors.Is(err, domain.ErrUserInactive))
}

func TestCurrentRoleTracksDirectory(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)
	u := f.user(domain.RoleClient)

	role, err := auth.CurrentRole(f.ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleClient, role)

	require.NoError(t, f.repos.Users.UpdateRole(f.ctx, u.UserID, domain.RoleOperator))
	role, err = auth.CurrentRole(f.ctx, u.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOperator, role)
}

func TestRefreshTokenRotation(t *testing.T) {
	f := newFixture(t)
	auth := newAuth(f)

	login, err := auth.Register(f.ctx, &RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)

	rotated, err := auth.RefreshToken(f.ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// The old token is spent
	_, err = auth.RefreshToken(f.ctx, login.RefreshToken)
	assert.Error(t, err)

	_, err = auth.RefreshToken(f.ctx, "garbage")
	assert.True(t, errors.Is(err, ErrInvalidToken))

	require.NoError(t, auth.LogoutAll(f.ctx, login.User.ID))
	_, err = auth.RefreshToken(f.ctx, rotated.RefreshToken)
	assert.Error(t, err)
}
