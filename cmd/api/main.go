package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kamandenj/linkup_social/chat"
	"github.com/kamandenj/linkup_social/database"
	"github.com/kamandenj/linkup_social/handlers"
	"github.com/kamandenj/linkup_social/routes"
	"github.com/kamandenj/linkup_social/websocket"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()

	chatStore := chat.NewGormStore(database.DB)
	handlers.InitChatService(chat.NewService(chatStore))

	// One reclamation pass per minute; SkipIfStillRunning lets an overlong
	// tick finish instead of racing the next one.
	sweeper := chat.NewSweeper(chatStore)
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))
	c.AddFunc("* * * * *", sweeper.Run)
	go c.Start()
	log.Println("✅ Message expiry sweeper scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "Linkup Social",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		BodyLimit:         100 * 1024 * 1024,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	routes.AuthRoutes(app)
	routes.UserRoutes(app)
	routes.PostRoutes(app)
	routes.ChatRoutes(app)
	routes.UploadRoutes(app)
	routes.AdminRoutes(app)

	go websocket.RunHub()

	log.Println("✅ Server is running on port 8080")
	if err := app.Listen(":8080"); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
