package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// inboxPollPeriod is how often the write pump re-renders the inbox.
	// The websocket is a push veneer over the same polled core reads.
	inboxPollPeriod = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and streams the visitor's inbox
// while accepting {"message": ...} frames. The visitor must already carry
// an identity cookie from GET /.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	uid, err := c.Cookie(cookieName)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no visitor identity"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
		return
	}

	client := &wsClient{
		core:   h.Core,
		logger: h.requestLogger(c).With("visitor", uid),
		userID: uid,
		conn:   conn,
		done:   make(chan struct{}),
	}
	go client.writePump()
	client.readPump()
}

// wsClient is one live websocket attached to a visitor. It holds no chat
// state of its own; every frame goes straight through the core.
type wsClient struct {
	core   ChatCore
	logger *slog.Logger
	userID string
	conn   *websocket.Conn
	done   chan struct{}
}

// readPump consumes inbound frames until the peer goes away. Frames must
// carry exactly one field named "message"; anything else is dropped with a
// log line, same as the form endpoint.
func (c *wsClient) readPump() {
	defer func() {
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", "err", err)
			}
			return
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			c.logger.Warn("dropping undecodable websocket frame", "err", err)
			continue
		}
		var text string
		if len(fields) != 1 || json.Unmarshal(fields["message"], &text) != nil {
			c.logger.Warn("dropping malformed websocket frame", "fields", len(fields))
			continue
		}
		c.core.SendMessage(c.userID, text)
	}
}

// writePump pushes the rendered inbox whenever it changes and keeps the
// connection alive with pings.
func (c *wsClient) writePump() {
	poll := time.NewTicker(inboxPollPeriod)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		poll.Stop()
		ping.Stop()
		c.conn.Close()
	}()

	var last []byte
	for {
		select {
		case <-poll.C:
			views := c.core.FetchMessages(c.userID)
			payload, err := json.Marshal(views)
			if err != nil {
				c.logger.Warn("failed to encode inbox", "err", err)
				continue
			}
			if bytes.Equal(payload, last) {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
			last = payload
		case <-ping.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
