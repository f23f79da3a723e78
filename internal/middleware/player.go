package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// PlayerIDKey is the fiber.Ctx local holding the caller's player ID.
const PlayerIDKey = "playerID"

// EnsurePlayerID reads the player ID from the X-Player-ID header, falling back
// to the playerId query parameter, and rejects requests that carry neither.
func EnsurePlayerID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(PlayerIDKey).(string); ok && id != "" {
			return c.Next()
		}

		playerID := strings.TrimSpace(c.Get("X-Player-ID"))
		if playerID == "" {
			playerID = strings.TrimSpace(c.Query("playerId"))
		}
		if playerID == "" {
			log.Debugf("%s %s rejected: no player id", c.Method(), c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Player ID is required. Please ensure client is properly initialized.",
			})
		}

		c.Locals(PlayerIDKey, playerID)
		return c.Next()
	}
}

// PlayerID returns the ID stored by EnsurePlayerID, or "" outside it.
func PlayerID(c *fiber.Ctx) string {
	id, _ := c.Locals(PlayerIDKey).(string)
	return id
}
