package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/kamandenj/linkup_social/database"
	"github.com/kamandenj/linkup_social/models"
)

func AdminListUsers(c *fiber.Ctx) error {
	var users []models.User
	err := database.DB.
		Select("id", "username", "email", "first_name", "last_name", "role", "created_at").
		Order("created_at desc").
		Find(&users).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}
	return c.JSON(users)
}

// AdminDeleteUser removes an account and everything it touched, with the
// same chat-participation pruning that self-deletion does.
func AdminDeleteUser(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.Where("username = ?", c.Params("username")).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if user.Role == "admin" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot delete an admin account"})
	}
	if err := removeUserData(c, user.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
	}
	return c.JSON(fiber.Map{"success": "User deleted successfully"})
}

func AdminStats(c *fiber.Ctx) error {
	var users, posts, chats, messages int64
	database.DB.Model(&models.User{}).Count(&users)
	database.DB.Model(&models.Post{}).Count(&posts)
	database.DB.Model(&models.Chat{}).Count(&chats)
	database.DB.Model(&models.Message{}).Count(&messages)
	return c.JSON(fiber.Map{
		"users":    users,
		"posts":    posts,
		"chats":    chats,
		"messages": messages,
	})
}
