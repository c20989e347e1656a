package websocket

import (
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/kamandenj/linkup_social/database"
	"github.com/kamandenj/linkup_social/models"
)

type Client struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
}

var clients = make(map[uuid.UUID]*websocket.Conn)
var clientsMu sync.RWMutex
var Register = make(chan *Client)
var Unregister = make(chan *Client)
var Broadcast = make(chan *models.Message)

// RunHub delivers each stored chat message to the other participant when
// they are online. Delivery is best effort; the message is already
// persisted by the time it reaches the hub.
func RunHub() {
	for {
		select {
		case client := <-Register:
			log.Printf("Client registered: %s", client.UserID)
			clientsMu.Lock()
			clients[client.UserID] = client.Conn
			clientsMu.Unlock()
		case client := <-Unregister:
			log.Printf("Client unregistered: %s", client.UserID)
			clientsMu.Lock()
			if conn, ok := clients[client.UserID]; ok && conn == client.Conn {
				delete(clients, client.UserID)
			}
			clientsMu.Unlock()
		case message := <-Broadcast:
			var participantIDs []uuid.UUID
			err := database.DB.
				Table("chat_participants").
				Where("chat_id = ?", message.ChatID).
				Pluck("user_id", &participantIDs).Error
			if err != nil {
				log.Printf("Error fetching participant IDs for chat %s: %v", message.ChatID, err)
				continue
			}

			clientsMu.RLock()
			var dead []uuid.UUID
			for _, participantID := range participantIDs {
				if participantID == message.SenderID {
					continue
				}
				if conn, ok := clients[participantID]; ok {
					if err := conn.WriteJSON(message); err != nil {
						log.Printf("Error sending message to client %s: %v", participantID, err)
						conn.Close()
						dead = append(dead, participantID)
					}
				}
			}
			clientsMu.RUnlock()
			if len(dead) > 0 {
				clientsMu.Lock()
				for _, id := range dead {
					delete(clients, id)
				}
				clientsMu.Unlock()
			}
		}
	}
}
