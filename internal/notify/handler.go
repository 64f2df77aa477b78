package notify

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware in front of
	// this handler.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler upgrades the connection and subscribes the caller with
// the actor identity the middleware placed on the request context.
func WebSocketHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetString("actor_id")
		role := c.GetString("actor_role")
		if actorID == "" || role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "actor identity required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := NewClient(uuid.New().String(), actorID, role, hub, conn)
		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
