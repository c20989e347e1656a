package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamandenj/linkup_social/handlers"
	"github.com/kamandenj/linkup_social/middleware"
)

func UploadRoutes(app *fiber.App) {
	uploads := app.Group("/api/uploads", middleware.Protected(), middleware.CurrentUser())

	uploads.Get("/signature", handlers.GenerateUploadSignature)
}
