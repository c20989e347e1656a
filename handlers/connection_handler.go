package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/database"
	"github.com/kamandenj/linkup_social/models"
)

// Join-table helpers. The graph lives in three self-referential join
// tables: user_connections (mutual, one row per direction),
// user_connection_requests (user_id = recipient, requester_id = sender)
// and user_blocks (user_id = blocker, blocked_id = blocked).

func hasRow(table, colA, colB string, a, b uuid.UUID) bool {
	var count int64
	database.DB.Table(table).Where(colA+" = ? AND "+colB+" = ?", a, b).Count(&count)
	return count > 0
}

func areConnected(a, b uuid.UUID) bool {
	return hasRow("user_connections", "user_id", "connection_id", a, b)
}

func hasPendingRequest(recipient, requester uuid.UUID) bool {
	return hasRow("user_connection_requests", "user_id", "requester_id", recipient, requester)
}

func blockedEitherWay(a, b uuid.UUID) bool {
	return hasRow("user_blocks", "user_id", "blocked_id", a, b) ||
		hasRow("user_blocks", "user_id", "blocked_id", b, a)
}

func userByUsername(c *fiber.Ctx) (*models.User, error) {
	var user models.User
	if err := database.DB.Where("username = ?", c.Params("username")).First(&user).Error; err != nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return &user, nil
}

func SendConnectionRequest(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	targetUser, err := userByUsername(c)
	if targetUser == nil {
		return err
	}
	if targetUser.ID == currentUser.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot connect with yourself"})
	}
	if blockedEitherWay(currentUser.ID, targetUser.ID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Cannot connect with this user"})
	}
	if areConnected(currentUser.ID, targetUser.ID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Already connected"})
	}
	if hasPendingRequest(targetUser.ID, currentUser.ID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Connection request already sent"})
	}

	err = database.DB.Exec(
		"INSERT INTO user_connection_requests (user_id, requester_id) VALUES (?, ?)",
		targetUser.ID, currentUser.ID).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to send request"})
	}
	return c.JSON(fiber.Map{"success": "Connection request sent"})
}

func AcceptConnectionRequest(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	requester, err := userByUsername(c)
	if requester == nil {
		return err
	}
	if !hasPendingRequest(currentUser.ID, requester.ID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No connection request from this user"})
	}

	tx := database.DB.Begin()
	if err := tx.Exec("DELETE FROM user_connection_requests WHERE user_id = ? AND requester_id = ?",
		currentUser.ID, requester.ID).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to accept request"})
	}
	if err := tx.Exec("INSERT INTO user_connections (user_id, connection_id) VALUES (?, ?), (?, ?)",
		currentUser.ID, requester.ID, requester.ID, currentUser.ID).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to accept request"})
	}
	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to accept request"})
	}
	return c.JSON(fiber.Map{"success": "Connection accepted"})
}

func ViewConnectionRequests(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	var requesters []models.User
	err := database.DB.
		Joins("JOIN user_connection_requests r ON r.requester_id = users.id AND r.user_id = ?", currentUser.ID).
		Select("users.id", "users.username", "users.first_name").
		Find(&requesters).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch requests"})
	}
	return c.JSON(requesters)
}

func ViewConnections(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	var connections []models.User
	err := database.DB.
		Joins("JOIN user_connections uc ON uc.connection_id = users.id AND uc.user_id = ?", currentUser.ID).
		Select("users.id", "users.username", "users.first_name").
		Find(&connections).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch connections"})
	}
	return c.JSON(connections)
}

func UnsendConnectionRequest(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	targetUser, err := userByUsername(c)
	if targetUser == nil {
		return err
	}
	if targetUser.ID == currentUser.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad Request"})
	}
	if !hasPendingRequest(targetUser.ID, currentUser.ID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No connection request to unsend"})
	}
	err = database.DB.Exec("DELETE FROM user_connection_requests WHERE user_id = ? AND requester_id = ?",
		targetUser.ID, currentUser.ID).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unsend request"})
	}
	return c.JSON(fiber.Map{"success": "Connection request unsent"})
}

func RejectConnectionRequest(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	requester, err := userByUsername(c)
	if requester == nil {
		return err
	}
	if requester.ID == currentUser.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bad Request"})
	}
	if !hasPendingRequest(currentUser.ID, requester.ID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No connection request from this user"})
	}
	err = database.DB.Exec("DELETE FROM user_connection_requests WHERE user_id = ? AND requester_id = ?",
		currentUser.ID, requester.ID).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete request"})
	}
	return c.JSON(fiber.Map{"success": "Connection request deleted"})
}

func RemoveConnection(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	connectedUser, err := userByUsername(c)
	if connectedUser == nil {
		return err
	}
	if !areConnected(currentUser.ID, connectedUser.ID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No connection exists with this user"})
	}
	err = database.DB.Exec(
		"DELETE FROM user_connections WHERE (user_id = ? AND connection_id = ?) OR (user_id = ? AND connection_id = ?)",
		currentUser.ID, connectedUser.ID, connectedUser.ID, currentUser.ID).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove connection"})
	}
	return c.JSON(fiber.Map{"success": "Connection removed"})
}

// BlockUser also severs any existing connection and pending requests in
// both directions.
func BlockUser(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	userToBlock, err := userByUsername(c)
	if userToBlock == nil {
		return err
	}
	if userToBlock.ID == currentUser.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot block yourself"})
	}
	if hasRow("user_blocks", "user_id", "blocked_id", currentUser.ID, userToBlock.ID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User already blocked"})
	}

	tx := database.DB.Begin()
	if err := tx.Exec("INSERT INTO user_blocks (user_id, blocked_id) VALUES (?, ?)",
		currentUser.ID, userToBlock.ID).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to block user"})
	}
	if err := tx.Exec(
		"DELETE FROM user_connections WHERE (user_id = ? AND connection_id = ?) OR (user_id = ? AND connection_id = ?)",
		currentUser.ID, userToBlock.ID, userToBlock.ID, currentUser.ID).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to block user"})
	}
	if err := tx.Exec(
		"DELETE FROM user_connection_requests WHERE (user_id = ? AND requester_id = ?) OR (user_id = ? AND requester_id = ?)",
		currentUser.ID, userToBlock.ID, userToBlock.ID, currentUser.ID).Error; err != nil {
		tx.Rollback()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to block user"})
	}
	if err := tx.Commit().Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to block user"})
	}
	return c.JSON(fiber.Map{"success": "User blocked"})
}

func UnblockUser(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	userToUnblock, err := userByUsername(c)
	if userToUnblock == nil {
		return err
	}
	if userToUnblock.ID == currentUser.ID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "It's you!"})
	}
	if !hasRow("user_blocks", "user_id", "blocked_id", currentUser.ID, userToUnblock.ID) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User is not blocked"})
	}
	err = database.DB.Exec("DELETE FROM user_blocks WHERE user_id = ? AND blocked_id = ?",
		currentUser.ID, userToUnblock.ID).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to unblock user"})
	}
	return c.JSON(fiber.Map{"success": "User unblocked"})
}

func ViewBlockList(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	var blocked []models.User
	err := database.DB.
		Joins("JOIN user_blocks b ON b.blocked_id = users.id AND b.user_id = ?", currentUser.ID).
		Select("users.id", "users.username", "users.email", "users.first_name", "users.last_name").
		Find(&blocked).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch block list"})
	}
	if len(blocked) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No blocked users found"})
	}
	return c.JSON(blocked)
}
