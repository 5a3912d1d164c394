// notebook/auth/auth.go
package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Header carries the shared API token.
const Header = "X-Lumi-Token"

// Middleware rejects requests whose X-Lumi-Token does not match token. An
// empty token rejects everything.
func Middleware(token string) fiber.Handler {
	want := []byte(token)
	return func(c *fiber.Ctx) error {
		got := []byte(c.Get(Header))
		if len(want) == 0 || subtle.ConstantTimeCompare(got, want) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	}
}
