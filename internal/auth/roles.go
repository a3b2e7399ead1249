package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/queuedesk/queue-service/internal/domain"
	apperrors "github.com/queuedesk/queue-service/pkg/util"
)

// RequireRole ensures the authenticated caller holds one of the allowed roles.
// It must run after AuthMiddleware.Handle.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !identity.Is(allowed...) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
