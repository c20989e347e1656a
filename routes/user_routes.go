package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamandenj/linkup_social/handlers"
	"github.com/kamandenj/linkup_social/middleware"
)

func UserRoutes(app *fiber.App) {
	users := app.Group("/api/users", middleware.Protected(), middleware.CurrentUser())

	users.Get("/search", handlers.SearchUsers)
	users.Get("/all", handlers.ListUsers)
	users.Get("/:userId/load", handlers.GetUserByID)

	users.Post("/uploadProfilePicture", handlers.UploadProfilePicture)
	users.Delete("/deleteProfilePicture", handlers.DeleteProfilePicture)
	users.Get("/:username/profilePicture", handlers.GetProfilePicture)

	users.Post("/connect/:username", handlers.SendConnectionRequest)
	users.Post("/accept-connection/:username", handlers.AcceptConnectionRequest)
	users.Get("/requests", handlers.ViewConnectionRequests)
	users.Get("/connections", handlers.ViewConnections)
	users.Delete("/unsend-request/:username", handlers.UnsendConnectionRequest)
	users.Delete("/delete-request/:username", handlers.RejectConnectionRequest)
	users.Delete("/disconnect/:username", handlers.RemoveConnection)
	users.Post("/block/:username", handlers.BlockUser)
	users.Post("/unblock/:username", handlers.UnblockUser)
	users.Get("/blocked", handlers.ViewBlockList)
}
