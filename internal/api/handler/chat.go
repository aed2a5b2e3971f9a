package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"whispergo/backend/internal/models"
)

// Index identifies the visitor (minting an identity cookie on first
// contact), places them into a room if they have none, and reports the
// room state together with the backlog rendered from their point of view.
func (h *Handler) Index(c *gin.Context) {
	cookie, _ := c.Cookie(cookieName)
	uid, minted := h.Core.Identify(cookie)
	if minted {
		c.SetCookie(cookieName, uid, 0, "/", "", false, true)
	}

	status := h.Core.JoinOrStatus(uid)
	c.JSON(http.StatusOK, gin.H{
		"state":      status.State,
		"peer_count": status.PeerCount,
		"online":     h.Core.OnlineCount(),
		"messages":   status.Messages,
	})
}

// Messages returns the visitor's inbox, newest first. No identity or no
// room both degrade to an empty list, never an error.
func (h *Handler) Messages(c *gin.Context) {
	uid, err := c.Cookie(cookieName)
	if err != nil {
		c.JSON(http.StatusOK, []models.MessageView{})
		return
	}
	views := h.Core.FetchMessages(uid)
	if views == nil {
		views = []models.MessageView{}
	}
	c.JSON(http.StatusOK, views)
}

// Send accepts a form post with exactly one field named "message". Anything
// else is dropped with a log line and no state change. Either way the
// client is sent back to the index.
func (h *Handler) Send(c *gin.Context) {
	uid, err := c.Cookie(cookieName)
	if err == nil {
		if err := c.Request.ParseForm(); err != nil {
			h.requestLogger(c).Warn("dropping unparseable message post", "err", err)
		} else if form := c.Request.PostForm; len(form) != 1 || len(form["message"]) != 1 {
			h.requestLogger(c).Warn("dropping malformed message post", "fields", len(form))
		} else {
			h.Core.SendMessage(uid, form.Get("message"))
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Exit leaves the visitor's room, if any, and sends them back to the index.
func (h *Handler) Exit(c *gin.Context) {
	uid, _ := c.Cookie(cookieName)
	h.Core.Leave(uid)
	c.Redirect(http.StatusSeeOther, "/")
}

// Dump exposes the core's diagnostic snapshot. Operational use only.
func (h *Handler) Dump(c *gin.Context) {
	c.String(http.StatusOK, h.Core.DebugDump())
}

// Healthz is a plain liveness probe.
func (h *Handler) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}
