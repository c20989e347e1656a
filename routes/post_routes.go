package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamandenj/linkup_social/handlers"
	"github.com/kamandenj/linkup_social/middleware"
)

func PostRoutes(app *fiber.App) {
	posts := app.Group("/api/posts", middleware.Protected(), middleware.CurrentUser())

	posts.Get("/all", handlers.GetAllPosts)
	posts.Get("/html", handlers.GetAllPostsHTML)
	posts.Get("/", handlers.GetUserPosts)
	posts.Post("/create", handlers.CreatePost)
	posts.Delete("/delete/:postId", handlers.DeletePost)
	posts.Put("/edit/:postId", handlers.UpdatePost)
	posts.Post("/:postId/like", handlers.LikePost)
	posts.Post("/:postId/unlike", handlers.UnlikePost)
	posts.Get("/:postId/download", handlers.DownloadPost)
}
