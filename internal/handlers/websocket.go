package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins (for development and demo)
	},
}

// StreamPrices handles GET /ws/prices: upgrades the connection and relays
// feed quotes until the client goes away or the feed shuts down.
func (h *Handler) StreamPrices(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	quotes, cancel := h.feed.Subscribe()
	defer cancel()

	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("price stream client connected")

	// Drain reads so close frames from the client are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case quote, ok := <-quotes:
			if !ok {
				return
			}
			if err := conn.WriteJSON(quote); err != nil {
				log.Debug().Err(err).Msg("price stream client dropped")
				return
			}
		}
	}
}
