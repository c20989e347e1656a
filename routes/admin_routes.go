package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamandenj/linkup_social/handlers"
	"github.com/kamandenj/linkup_social/middleware"
)

func AdminRoutes(app *fiber.App) {
	admin := app.Group("/api/admin",
		middleware.Protected(), middleware.CurrentUser(), middleware.AdminRequired())

	admin.Get("/users", handlers.AdminListUsers)
	admin.Delete("/users/:username", handlers.AdminDeleteUser)
	admin.Get("/stats", handlers.AdminStats)
}
