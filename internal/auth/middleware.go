package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocalsEmail is the fiber locals key the middleware stores the verified
// account email under.
const LocalsEmail = "email"

// Protect returns middleware that rejects requests without a valid
// Bearer token before the handler body runs.
func (g *Gate) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(header, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrUnauthorized.Error()})
		}
		email, err := g.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrUnauthorized.Error()})
		}
		c.Locals(LocalsEmail, email)
		return c.Next()
	}
}
