package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/apperrors"
	config "github.com/kamandenj/linkup_social/configs"
	"github.com/kamandenj/linkup_social/chat"
	"github.com/kamandenj/linkup_social/models"
	"github.com/kamandenj/linkup_social/services"
	"github.com/kamandenj/linkup_social/websocket"
)

var chatService *chat.Service

// InitChatService wires the chat service built in main into the handlers.
func InitChatService(s *chat.Service) {
	chatService = s
}

// statusFromError maps the domain error taxonomy onto HTTP statuses.
func statusFromError(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeNotFound:
		return fiber.StatusNotFound
	case apperrors.CodeAlreadyExists:
		return fiber.StatusConflict
	case apperrors.CodeInvalidArgument, apperrors.CodeUnknownType:
		return fiber.StatusBadRequest
	case apperrors.CodePermissionDenied:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

func chatError(c *fiber.Ctx, err error) error {
	status := statusFromError(err)
	if status == fiber.StatusInternalServerError {
		log.Printf("Chat error: %v", err)
		return c.Status(status).JSON(fiber.Map{"error": "Server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func chatPair(c *fiber.Ctx) (caller, target *models.User) {
	return c.Locals("currentUser").(*models.User), c.Locals("targetUser").(*models.User)
}

func StartChat(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	created, err := chatService.Start(c.Context(), caller.ID, target.ID)
	if err != nil {
		return chatError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func LoadChat(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	loaded, msgs, err := chatService.Load(c.Context(), caller.ID, target.ID)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(fiber.Map{
		"participants": loaded.Participants,
		"messages":     msgs,
		"wipe_at":      loaded.WipeAt,
		"created_at":   loaded.CreatedAt,
		"updated_at":   loaded.UpdatedAt,
	})
}

func DeleteChat(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	if err := chatService.Delete(c.Context(), caller.ID, target.ID); err != nil {
		return chatError(c, err)
	}
	return c.JSON(fiber.Map{"success": "Chat deleted successfully."})
}

// SendMessage accepts multipart form data: content and/or a file part, an
// optional private flag and an optional ttl_minutes for private messages.
func SendMessage(c *fiber.Ctx) error {
	caller, target := chatPair(c)

	content := c.FormValue("content")
	private, _ := strconv.ParseBool(c.FormValue("private", "false"))
	ttlMinutes, _ := strconv.Atoi(c.FormValue("ttl_minutes", "0"))

	var file []byte
	if fileHeader, err := c.FormFile("file"); err == nil {
		opened, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot read uploaded file"})
		}
		defer opened.Close()
		file, err = io.ReadAll(opened)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot read uploaded file"})
		}
	}

	msg, err := chatService.Send(c.Context(), caller.ID, target.ID, caller.ID, content, file, private, ttlMinutes)
	if err != nil {
		return chatError(c, err)
	}

	select {
	case websocket.Broadcast <- msg:
	default:
		// Hub not draining; live push is best effort.
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func GetRecentMessage(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	msg, err := chatService.MostRecent(c.Context(), caller.ID, target.ID)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(msg)
}

func LoadAllMessages(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	msgs, err := chatService.ListAll(c.Context(), caller.ID, target.ID)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(msgs)
}

func DeleteMessage(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	messageID, err := uuid.Parse(c.Params("messageId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
	}
	if err := chatService.DeleteMessage(c.Context(), caller.ID, target.ID, messageID); err != nil {
		return chatError(c, err)
	}
	return c.JSON(fiber.Map{"success": "Message deleted successfully."})
}

type UpdateMessageRequest struct {
	Content *string `json:"content"`
	File    []byte  `json:"file"`
}

func UpdateMessage(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	messageID, err := uuid.Parse(c.Params("messageId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
	}

	var req UpdateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	msg, err := chatService.EditMessage(c.Context(), caller.ID, target.ID, messageID, req.Content, req.File)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(msg)
}

func MarkMessagesSeen(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	seen, err := chatService.MarkSeen(c.Context(), caller.ID, target.ID, caller.ID)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(fiber.Map{"seen": seen})
}

func ClearAllMessages(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	if err := chatService.ClearAll(c.Context(), caller.ID, target.ID); err != nil {
		return chatError(c, err)
	}
	return c.JSON(fiber.Map{"success": "All messages cleared."})
}

type ScheduleWipeRequest struct {
	WipeAt time.Time `json:"wipe_at" validate:"required"`
}

func ScheduleChatWipe(c *fiber.Ctx) error {
	caller, target := chatPair(c)

	var req ScheduleWipeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := chatService.ScheduleWipe(c.Context(), caller.ID, target.ID, req.WipeAt); err != nil {
		return chatError(c, err)
	}
	return c.JSON(fiber.Map{"success": "Chat wipe scheduled.", "wipe_at": req.WipeAt})
}

func SearchMessages(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	msgs, err := chatService.Search(c.Context(), caller.ID, target.ID, c.Query("query"))
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(msgs)
}

func LoadHTMLMessages(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	html, err := chatService.RenderHTML(c.Context(), caller.ID, target.ID, caller.ID)
	if err != nil {
		return chatError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(html)
}

// ExportChatPDF renders the visible transcript and prints it to PDF.
func ExportChatPDF(c *fiber.Ctx) error {
	caller, target := chatPair(c)
	html, err := chatService.RenderHTML(c.Context(), caller.ID, target.ID, caller.ID)
	if err != nil {
		return chatError(c, err)
	}
	pdf, err := services.RenderPDF(c.Context(), html)
	if err != nil {
		log.Printf("Failed to render chat PDF: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to export chat"})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "chat-"+target.Username+".pdf"))
	return c.Send(pdf)
}

// ServeWs registers an authenticated client with the hub so stored
// messages can be pushed to them as they arrive.
func ServeWs(c *websocketcontrib.Conn) {
	type AuthMessage struct {
		Type  string `json:"type"`
		Token string `json:"token"`
	}
	var authMsg AuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" {
		log.Printf("WebSocket auth failed: invalid or missing auth message: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
		c.Close()
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		log.Printf("WebSocket auth failed: invalid token: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
		c.Close()
		return
	}
	userID, err := uuid.Parse(claims["user_id"].(string))
	if err != nil {
		log.Printf("WebSocket auth failed: invalid user_id: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Invalid user ID"})
		c.Close()
		return
	}

	client := &websocket.Client{UserID: userID, Conn: c}
	websocket.Register <- client
	defer func() {
		websocket.Unregister <- client
		c.Close()
	}()

	// Drain the connection; sends happen over the REST endpoints and the
	// hub handles pushes.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", userID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			return
		}
	}
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
