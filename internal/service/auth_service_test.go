package service_test

import (
	"testing"

	"github.com/crypto-journal/internal/config"
	"github.com/crypto-journal/internal/repository"
	"github.com/crypto-journal/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	db := newTestDB(t)
	return service.NewAuthService(repository.NewUserRepository(db), config.JWTConfig{
		Secret:      "test-secret",
		ExpireHours: 1,
	})
}

func TestSignupIssuesValidToken(t *testing.T) {
	svc := newAuthService(t)

	user, token, err := svc.Signup(&service.SignupRequest{
		Email:         "trader@example.com",
		Password:      "hunter2x",
		InitialAmount: 1000,
	})
	require.NoError(t, err)
	require.NotNil(t, token)

	assert.Equal(t, "trader@example.com", user.Email)
	assert.Equal(t, 1000.0, user.InitialAmount)
	assert.NotEqual(t, "hunter2x", user.PasswordHash)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.NotEmpty(t, claims.ID, "token carries a unique id")
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(t)

	req := &service.SignupRequest{
		Email:         "trader@example.com",
		Password:      "hunter2x",
		InitialAmount: 1000,
	}
	_, _, err := svc.Signup(req)
	require.NoError(t, err)

	_, _, err = svc.Signup(req)
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestSigninChecksCredentials(t *testing.T) {
	svc := newAuthService(t)

	_, _, err := svc.Signup(&service.SignupRequest{
		Email:         "trader@example.com",
		Password:      "hunter2x",
		InitialAmount: 1000,
	})
	require.NoError(t, err)

	user, token, err := svc.Signin(&service.SigninRequest{
		Email:    "trader@example.com",
		Password: "hunter2x",
	})
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "trader@example.com", user.Email)

	_, _, err = svc.Signin(&service.SigninRequest{
		Email:    "trader@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = svc.Signin(&service.SigninRequest{
		Email:    "nobody@example.com",
		Password: "hunter2x",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials, "unknown email looks like bad credentials")
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	db := newTestDB(t)
	userRepo := repository.NewUserRepository(db)

	issuer := service.NewAuthService(userRepo, config.JWTConfig{Secret: "secret-a", ExpireHours: 1})
	verifier := service.NewAuthService(userRepo, config.JWTConfig{Secret: "secret-b", ExpireHours: 1})

	_, token, err := issuer.Signup(&service.SignupRequest{
		Email:         "trader@example.com",
		Password:      "hunter2x",
		InitialAmount: 1000,
	})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token.AccessToken)
	assert.Error(t, err)
}
