package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

func newService() *Service {
	return &Service{
		Users:      memory.NewUserRepository(),
		Sessions:   memory.NewSessionStore(),
		Passwords:  security.BcryptHasher{Cost: 4},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterParams{
		Email:    "  Priya@Example.com ",
		Name:     "Priya",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", res.User.Email)
	assert.NotEmpty(t, res.Token)
	assert.NotEqual(t, "sup3rsecret", res.User.PasswordHash)

	login, err := svc.Login(ctx, LoginParams{Email: "priya@example.com", Password: "sup3rsecret"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotEqual(t, res.Token, login.Token)

	_, err = svc.Login(ctx, LoginParams{Email: "priya@example.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "sup3rsecret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "", Name: "X", Password: "longenough"})
	assert.ErrorIs(t, err, domainuser.ErrEmailRequired)

	_, err = svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "  ", Password: "longenough"})
	assert.ErrorIs(t, err, domainuser.ErrNameRequired)

	_, err = svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "X", Password: "short"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "First", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterParams{Email: "A@B.COM", Name: "Second", Password: "longenough"})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestResolveToken(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "X", Password: "longenough"})
	require.NoError(t, err)

	resolved, err := svc.ResolveToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, resolved.User.ID)

	_, err = svc.ResolveToken(ctx, "bogus-token")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	_, err = svc.ResolveToken(ctx, "   ")
	assert.ErrorIs(t, err, domainauth.ErrTokenRequired)
}

func TestLogout(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	res, err := svc.Register(ctx, RegisterParams{Email: "a@b.com", Name: "X", Password: "longenough"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.Token))

	_, err = svc.ResolveToken(ctx, res.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	// Logging out an absent token is a no-op.
	assert.NoError(t, svc.Logout(ctx, ""))
}
