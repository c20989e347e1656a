package handlers

import (
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/database"
	"github.com/kamandenj/linkup_social/models"
	"github.com/kamandenj/linkup_social/utils"
)

type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Age       *int      `json:"age,omitempty"`
	Sex       string    `json:"sex"`
	Bio       string    `json:"bio"`
}

func publicUser(u *models.User) PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Age:       u.Age,
		Sex:       u.Sex,
		Bio:       u.Bio,
	}
}

// visibleTo filters out users on either side of a block.
func visibleTo(viewerID uuid.UUID, users []models.User) []PublicUser {
	out := make([]PublicUser, 0, len(users))
	for i := range users {
		if users[i].ID == viewerID || !blockedEitherWay(viewerID, users[i].ID) {
			out = append(out, publicUser(&users[i]))
		}
	}
	return out
}

// SearchUsers matches username/email exactly and names case-insensitively.
func SearchUsers(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	term := c.Query("usr")
	if term == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Search term is required"})
	}

	var users []models.User
	err := database.DB.
		Where("username = ? OR email = ? OR first_name ILIKE ? OR last_name ILIKE ?",
			term, term, "%"+term+"%", "%"+term+"%").
		Find(&users).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to search users"})
	}

	accessible := visibleTo(currentUser.ID, users)
	if len(accessible) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No users found"})
	}
	return c.JSON(accessible)
}

func ListUsers(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	var users []models.User
	err := database.DB.
		Select("id", "username", "email", "first_name", "last_name", "age", "sex", "bio").
		Find(&users).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}
	return c.JSON(visibleTo(currentUser.ID, users))
}

// GetUserByID returns a profile with the viewer's relationship status.
func GetUserByID(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
	}
	if blockedEitherWay(currentUser.ID, user.ID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Access denied"})
	}

	return c.JSON(fiber.Map{
		"id":            user.ID,
		"username":      user.Username,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"sex":           user.Sex,
		"bio":           user.Bio,
		"joined":        user.CreatedAt,
		"is_connected":  areConnected(user.ID, currentUser.ID),
		"has_requested": hasPendingRequest(user.ID, currentUser.ID),
	})
}

func UploadProfilePicture(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)

	fileHeader, err := c.FormFile("profilePicture")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file uploaded"})
	}
	opened, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot read uploaded file"})
	}
	defer opened.Close()
	data, err := io.ReadAll(opened)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot read uploaded file"})
	}

	mime, err := utils.DetectFileType(data)
	if err != nil || !utils.IsImageType(mime) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only image files are allowed!"})
	}

	resized, err := utils.ResizeProfilePicture(data, mime)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error updating profile picture"})
	}

	if err := database.DB.Model(currentUser).Update("profile_picture", resized).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error updating profile picture"})
	}
	return c.JSON(fiber.Map{"success": "Profile picture updated successfully"})
}

func DeleteProfilePicture(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)
	if len(currentUser.ProfilePicture) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No profile picture to delete"})
	}
	if err := database.DB.Model(currentUser).Update("profile_picture", nil).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete profile picture"})
	}
	return c.JSON(fiber.Map{"success": "Profile picture deleted successfully"})
}

// GetProfilePicture serves the raw picture bytes with a sniffed type.
func GetProfilePicture(c *fiber.Ctx) error {
	currentUser := c.Locals("currentUser").(*models.User)

	var user models.User
	if err := database.DB.
		Select("id", "profile_picture").
		Where("username = ?", c.Params("username")).
		First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	if blockedEitherWay(currentUser.ID, user.ID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}
	if len(user.ProfilePicture) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile picture not found"})
	}

	mime, err := utils.DetectFileType(user.ProfilePicture)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to serve profile picture"})
	}
	c.Set(fiber.HeaderContentType, mime)
	return c.Send(user.ProfilePicture)
}
