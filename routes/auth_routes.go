package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamandenj/linkup_social/handlers"
	"github.com/kamandenj/linkup_social/middleware"
)

func AuthRoutes(app *fiber.App) {
	auth := app.Group("/api/auth")

	auth.Post("/register", handlers.RegisterUser)
	auth.Post("/login", handlers.LoginUser)
	auth.Post("/user", handlers.IsUsernameAvailable)
	auth.Post("/mail", handlers.IsEmailAvailable)

	auth.Post("/logout", middleware.Protected(), middleware.CurrentUser(), handlers.LogoutUser)
	auth.Get("/current", middleware.Protected(), middleware.CurrentUser(), handlers.CurrentSession)
	auth.Delete("/deleteUser", middleware.Protected(), middleware.CurrentUser(), handlers.DeleteAccount)
}
