package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zgt/todo-list/modules/auth"
)

// UserContextKey is the key used to store session claims in the Fiber
// context.
const UserContextKey = "user"

// AuthMiddleware validates bearer tokens and attaches the resolved
// identity to the request context. Unauthorized responses are kept
// distinct from other failures so clients can prompt for sign-in.
func AuthMiddleware(authPort auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid authorization header format. Use: Bearer <token>",
			})
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Token is required",
			})
		}

		claims, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Invalid or expired token",
			})
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}

// sessionUserID returns the authenticated user id, or "" when the
// middleware did not run.
func sessionUserID(c *fiber.Ctx) string {
	claims, ok := c.Locals(UserContextKey).(*auth.Claims)
	if !ok {
		return ""
	}
	return claims.UserID
}
