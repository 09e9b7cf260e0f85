package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LocalsKey is the fiber locals key carrying the request's ray ID.
const LocalsKey = "ray_id"

// HeaderName is the response header carrying the ray ID.
const HeaderName = "X-Ray-ID"

// New returns a middleware that assigns every request a unique ray ID,
// reusing the caller-provided one when present so IDs survive proxy
// hops.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalsKey, id)
		c.Set(HeaderName, id)
		return c.Next()
	}
}
