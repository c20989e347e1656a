package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/kamandenj/linkup_social/configs"
	"github.com/kamandenj/linkup_social/database"
	"github.com/kamandenj/linkup_social/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

const sessionLifetime = 30 * 24 * time.Hour

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=30"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Age       *int   `json:"age" validate:"omitempty,min=0"`
	Sex       string `json:"sex" validate:"omitempty,oneof=Male Female Other"`
	Bio       string `json:"bio" validate:"max=500"`
}

type LoginRequest struct {
	// Identifier is a username or an email address.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	CreatedAt time.Time `json:"created_at"`
}

func RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var count int64
	database.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username already exists!"})
	}
	database.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"email_error": "Email already exists!"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	newUser := models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
		Sex:       req.Sex,
		Bio:       req.Bio,
	}
	if err := database.DB.Create(&newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username or email already exists!"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": "Registration successful!"})
}

func LoginUser(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	err := database.DB.
		Where("username = ? OR email = ?", req.Identifier, req.Identifier).
		First(&user).Error
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "User not found!"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Wrong Password!"})
	}

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(sessionLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(config.Config("JWT_SECRET")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign token"})
	}

	// Rotating the session id invalidates any token issued earlier.
	if err := database.DB.Model(&user).Update("current_session_id", signed).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to start session"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  "Log in successful!",
		"token":    signed,
		"user_id":  user.ID,
		"username": user.Username,
	})
}

func LogoutUser(c *fiber.Ctx) error {
	user := c.Locals("currentUser").(*models.User)
	if err := database.DB.Model(user).Update("current_session_id", nil).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to end session"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": "Log out successful!"})
}

type DeleteAccountRequest struct {
	Password string `json:"password" validate:"required"`
}

// DeleteAccount removes the caller's account: their posts go, and they are
// pruned from every chat they took part in. A chat whose last participant
// leaves is deleted with its messages; one with a remaining participant
// stays readable for that participant.
func DeleteAccount(c *fiber.Ctx) error {
	user := c.Locals("currentUser").(*models.User)

	var req DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid Password!"})
	}

	if err := removeUserData(c, user.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": "User deleted successfully!"})
}

// removeUserData is shared by self-deletion and the admin delete endpoint.
func removeUserData(c *fiber.Ctx, userID uuid.UUID) error {
	if err := database.DB.Exec("DELETE FROM post_likes WHERE post_id IN (SELECT id FROM posts WHERE user_id = ?)", userID).Error; err != nil {
		return err
	}
	if err := database.DB.Where("user_id = ?", userID).Delete(&models.Post{}).Error; err != nil {
		return err
	}
	if err := chatService.PruneUser(c.Context(), userID); err != nil {
		return err
	}
	stmts := []string{
		"DELETE FROM user_connections WHERE user_id = ? OR connection_id = ?",
		"DELETE FROM user_connection_requests WHERE user_id = ? OR requester_id = ?",
		"DELETE FROM user_blocks WHERE user_id = ? OR blocked_id = ?",
	}
	for _, stmt := range stmts {
		if err := database.DB.Exec(stmt, userID, userID).Error; err != nil {
			return err
		}
	}
	if err := database.DB.Exec("DELETE FROM post_likes WHERE user_id = ?", userID).Error; err != nil {
		return err
	}
	return database.DB.Delete(&models.User{}, "id = ?", userID).Error
}

type AvailabilityRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func IsUsernameAvailable(c *fiber.Ctx) error {
	var req AvailabilityRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Username) == "" {
		return c.Status(fiber.StatusBadRequest).Send(nil)
	}
	var count int64
	database.DB.Model(&models.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).Send(nil)
	}
	return c.SendStatus(fiber.StatusOK)
}

func IsEmailAvailable(c *fiber.Ctx) error {
	var req AvailabilityRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.Status(fiber.StatusBadRequest).Send(nil)
	}
	var count int64
	database.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return c.Status(fiber.StatusBadRequest).Send(nil)
	}
	return c.SendStatus(fiber.StatusOK)
}

func CurrentSession(c *fiber.Ctx) error {
	user := c.Locals("currentUser").(*models.User)
	return c.JSON(fiber.Map{
		"user_id":  user.ID,
		"username": user.Username,
	})
}
