package router

import (
	"github.com/gofiber/fiber/v2"
)

// InstallRouter wires all route groups into the Fiber app.
func InstallRouter(app *fiber.App) {
	NewHttpRouter().InstallRouter(app)
	NewApiRouter().InstallRouter(app)
}
