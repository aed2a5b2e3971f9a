package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"whispergo/backend/internal/chatcore"
	"whispergo/backend/internal/models"
)

// cookieName carries the opaque visitor identifier. The value is the whole
// identity; there is no signing or session state behind it.
const cookieName = "uid"

// ChatCore is the slice of the core the transport layer needs.
type ChatCore interface {
	Identify(cookie string) (id string, minted bool)
	JoinOrStatus(userID string) chatcore.RoomStatus
	FetchMessages(userID string) []models.MessageView
	SendMessage(userID, text string)
	Leave(userID string)
	OnlineCount() int
	DebugDump() string
}

// Handler adapts HTTP requests onto the chat core.
type Handler struct {
	Core   ChatCore
	Logger *slog.Logger
}

func NewHandler(core ChatCore, logger *slog.Logger) *Handler {
	return &Handler{Core: core, Logger: logger}
}

// RequestID tags every request with a correlation ID, echoed back in the
// X-Request-ID header and attached to handler log lines.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// requestLogger returns the handler logger scoped to this request.
func (h *Handler) requestLogger(c *gin.Context) *slog.Logger {
	if id, ok := c.Get("request_id"); ok {
		return h.Logger.With("request_id", id)
	}
	return h.Logger
}
