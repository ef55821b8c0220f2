package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/platewatch/backend/internal/service"
)

// userContextKey is the fiber.Ctx locals key holding the token claims.
const userContextKey = "user"

// RequireAuth validates the bearer token and stores its claims in the
// request context. Missing or invalid tokens get a uniform 401.
func RequireAuth(auth *service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearer(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing bearer token")
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(userContextKey, claims)
		return c.Next()
	}
}

// RequirePermission gates a route on one permission from the token claims.
// Must run after RequireAuth.
func RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(userContextKey).(*service.Claims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing bearer token")
		}
		for _, p := range claims.Permissions {
			if p == perm {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "Insufficient permissions")
	}
}

// ClaimsFromCtx returns the validated claims stored by RequireAuth.
func ClaimsFromCtx(c *fiber.Ctx) *service.Claims {
	claims, _ := c.Locals(userContextKey).(*service.Claims)
	return claims
}

// extractBearer pulls the token out of an Authorization header value.
func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
