package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/kamandenj/linkup_social/handlers"
	"github.com/kamandenj/linkup_social/middleware"
)

func ChatRoutes(app *fiber.App) {
	chat := app.Group("/api/chat/:username",
		middleware.Protected(), middleware.CurrentUser(), middleware.Connected())

	chat.Post("/start", handlers.StartChat)
	chat.Get("/load", handlers.LoadChat)
	chat.Delete("/delete", handlers.DeleteChat)
	chat.Post("/send", handlers.SendMessage)
	chat.Get("/recentMessage", handlers.GetRecentMessage)
	chat.Get("/messages", handlers.LoadAllMessages)
	chat.Get("/messages/html", handlers.LoadHTMLMessages)
	chat.Get("/messages/pdf", handlers.ExportChatPDF)
	chat.Delete("/message/:messageId", handlers.DeleteMessage)
	chat.Put("/message/:messageId", handlers.UpdateMessage)
	chat.Post("/seen", handlers.MarkMessagesSeen)
	chat.Delete("/clearMessages", handlers.ClearAllMessages)
	chat.Post("/scheduleWipe", handlers.ScheduleChatWipe)
	chat.Get("/searchMessages", handlers.SearchMessages)

	app.Use("/api/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	app.Get("/api/ws", websocket.New(handlers.ServeWs))
}
