package server

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func requireJWT(keyfunc jwt.Keyfunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if header == "" || token == header {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		parsed, err := jwt.Parse(token, keyfunc)
		if err != nil || !parsed.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}
		c.Locals("claims", parsed.Claims)
		return c.Next()
	}
}
