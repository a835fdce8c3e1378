package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature that registers endpoints
type Route interface {
	Setup(app *fiber.App)
}
