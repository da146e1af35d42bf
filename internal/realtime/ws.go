package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/civicsync/civicsync/internal/logger"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades the request and streams hub events to the connection as
// JSON frames until the client goes away. Teardown unsubscribes the session,
// so events published afterwards are never written to the dead connection.
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Error("Failed to upgrade websocket", map[string]interface{}{
				"error":     err.Error(),
				"component": "realtime",
			})
			return
		}
		defer ws.Close()

		sub, cancel := hub.Subscribe()
		defer cancel()

		// Reader goroutine: the protocol defines no client-to-server events,
		// so reads only serve to detect close.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					if wsErr, ok := err.(*websocket.CloseError); ok {
						if wsErr.Code != websocket.CloseNormalClosure && wsErr.Code != websocket.CloseGoingAway {
							logger.Debug("Websocket closed", map[string]interface{}{
								"error":     wsErr.Error(),
								"component": "realtime",
							})
						}
					}
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				ws.SetWriteDeadline(time.Now().Add(writeTimeout))
				if err := ws.WriteJSON(ev); err != nil {
					return
				}
			}
		}
	}
}
