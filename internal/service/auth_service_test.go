package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuedesk/queue-service/internal/auth"
	"github.com/queuedesk/queue-service/internal/config"
	"github.com/queuedesk/queue-service/internal/domain"
	"github.com/queuedesk/queue-service/internal/repository/memory"
	apperrors "github.com/queuedesk/queue-service/pkg/util"
)

func newAuthService(tokens *auth.TokenManager) *AuthService {
	repos := memory.NewStore().Repositories()
	return NewAuthService(config.AuthConfig{BcryptCost: 4}, repos.Users, tokens, nil)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	tokens := auth.NewTokenManager("secret", 60)
	svc := newAuthService(tokens)

	user, err := svc.Register(ctx, RegisterInput{Email: " Alice@Example.com ", Password: "pw", FullName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.NotEqual(t, "pw", user.PasswordHash)

	loggedIn, token, _, err := svc.Login(ctx, "ALICE@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := tokens.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(auth.NewTokenManager("secret", 60))

	cases := []RegisterInput{
		{Password: "pw", FullName: "No Email"},
		{Email: "a@example.com", FullName: "No Password"},
		{Email: "a@example.com", Password: "pw"},
		{Email: "not-an-email", Password: "pw", FullName: "Bad"},
		{Email: "a@example.com", Password: "pw", FullName: "Bad Role", Role: "owner"},
	}
	for _, input := range cases {
		_, err := svc.Register(ctx, input)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "input %+v", input)
	}

	_, err := svc.Register(ctx, RegisterInput{Email: "dup@example.com", Password: "pw", FullName: "One", Role: "staff"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: "DUP@example.com", Password: "pw", FullName: "Two"})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(auth.NewTokenManager("secret", 60))

	_, err := svc.Register(ctx, RegisterInput{Email: "b@example.com", Password: "right", FullName: "B", Role: "admin"})
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "b@example.com", "wrong")
	assert.True(t, apperrors.IsCode(err, "INVALID_CREDENTIALS"))

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "right")
	assert.True(t, apperrors.IsCode(err, "INVALID_CREDENTIALS"))

	_, _, _, err = svc.Login(ctx, "", "")
	assert.True(t, apperrors.IsCode(err, "INVALID_CREDENTIALS"))
}
