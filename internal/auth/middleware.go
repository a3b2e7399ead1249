package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/queuedesk/queue-service/internal/domain"
	apperrors "github.com/queuedesk/queue-service/pkg/util"
)

const identityKey = "auth_identity"

// AuthMiddleware validates bearer tokens and stores the caller identity.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}
	if err := m.authenticate(c, authHeader); err != nil {
		return err
	}
	return c.Next()
}

// HandleOptional attaches an identity when a credential is supplied. Requests
// without one pass through anonymously; a bad credential is still rejected.
func (m *AuthMiddleware) HandleOptional(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Next()
	}
	if err := m.authenticate(c, authHeader); err != nil {
		return err
	}
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx, header string) error {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewInvalidCredential("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewInvalidCredential("invalid token")
	}

	c.Locals(identityKey, claims.Identity())
	return nil
}

// IdentityFromContext retrieves the authenticated caller, if any.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*domain.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}
