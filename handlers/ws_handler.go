package handlers

import (
	ws "github.com/URAYUSHJAIN/skillforge/websocket"
	"github.com/gofiber/contrib/websocket"
)

// ServeAdminFeed keeps the connection registered with the hub until the
// client goes away. The feed is write-only; reads only detect disconnects.
func ServeAdminFeed(c *websocket.Conn) {
	ws.Register <- c
	defer func() {
		ws.Unregister <- c
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
