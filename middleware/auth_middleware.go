package middleware

import (
	config "github.com/kamandenj/linkup_social/configs"
	"github.com/kamandenj/linkup_social/database"
	"github.com/kamandenj/linkup_social/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func Protected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(config.Config("JWT_SECRET")),
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if err.Error() == "Missing or malformed JWT" {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "data": nil})
}

// CurrentUser resolves the token to its user row and rejects tokens other
// than the account's single active session.
func CurrentUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Locals("user").(*jwt.Token)
		claims := token.Claims.(jwt.MapClaims)
		userID, err := uuid.Parse(claims["user_id"].(string))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		}

		var user models.User
		if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session invalid or expired"})
		}
		if user.CurrentSessionID == nil || *user.CurrentSessionID != token.Raw {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session invalid or expired"})
		}

		c.Locals("currentUser", &user)
		return c.Next()
	}
}

func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals("currentUser").(*models.User)
		if user.Role != "admin" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Admin access required",
			})
		}
		return c.Next()
	}
}

// Connected resolves the :username route param to a target user and denies
// access unless the caller is connected with them. Chat endpoints sit
// behind this gate, so the chat service always receives a pre-checked pair.
func Connected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		currentUser := c.Locals("currentUser").(*models.User)

		var targetUser models.User
		if err := database.DB.Where("username = ?", c.Params("username")).First(&targetUser).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		if targetUser.ID == currentUser.ID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "It's you"})
		}

		var count int64
		database.DB.Table("user_connections").
			Where("user_id = ? AND connection_id = ?", currentUser.ID, targetUser.ID).
			Count(&count)
		if count == 0 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not connected with this user"})
		}

		c.Locals("targetUser", &targetUser)
		return c.Next()
	}
}
