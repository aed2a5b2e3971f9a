package models

import (
	"fmt"
	"strings"
	"sync"
)

// System message bodies appended by the room lifecycle itself.
const (
	TextChatInitiated = "Chat initiated"
	TextUserLeft      = "User left the room"
)

// Room is a pairing context for up to two visitors and their message ledger.
//
// The participant set and terminator are only ever mutated while the caller
// holds the core service lock; the room's own mutex guards the message
// ledger so that sends and renders in one room do not contend with
// matchmaking in another. Lock order is always core lock first, then room.
type Room struct {
	ID      string
	Created int64

	mu         sync.Mutex
	users      map[string]struct{}
	messages   []Message
	terminator string
}

// NewRoom creates a room containing only the initiator and a "Chat
// initiated" system message.
func NewRoom(id, initiator string) *Room {
	r := &Room{
		ID:      id,
		Created: NowMillis(),
		users:   map[string]struct{}{initiator: {}},
	}
	r.messages = append(r.messages, NewMessage("", TextChatInitiated))
	return r
}

// AddUser adds a participant and returns the resulting participant count.
func (r *Room) AddUser(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[id] = struct{}{}
	return len(r.users)
}

// UserCount returns the number of participants.
func (r *Room) UserCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// Users returns the participant IDs in no particular order.
func (r *Room) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.users))
	for id := range r.users {
		out = append(out, id)
	}
	return out
}

// Terminator returns the ID of the participant who left first, or "" while
// the room is still fully live.
func (r *Room) Terminator() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminator
}

// Terminate records the first departure: the leaver comes out of the
// participant set, the terminator is set and the departure system message
// is appended. The room stays registered so the remaining participant's
// next read observes it.
func (r *Room) Terminate(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, userID)
	r.terminator = userID
	r.messages = append(r.messages, NewMessage("", TextUserLeft))
}

// Append adds a user message to the ledger, evicting from the oldest end
// once max is exceeded. It refuses terminated rooms and reports whether the
// message was stored.
func (r *Room) Append(msg Message, max int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.terminator != "" {
		return false
	}
	r.messages = append(r.messages, msg)
	if max > 0 && len(r.messages) > max {
		r.messages = r.messages[len(r.messages)-max:]
	}
	return true
}

// MessageCount returns the current ledger length.
func (r *Room) MessageCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

// RenderFor renders the ledger newest-first from one participant's point of
// view. Rendering is the read receipt: any message classified as coming
// from the peer is marked seen, after the view for this render was taken.
func (r *Room) RenderFor(viewer string) []MessageView {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := make([]MessageView, 0, len(r.messages))
	for i := len(r.messages) - 1; i >= 0; i-- {
		msg := &r.messages[i]
		view := msg.View(viewer)
		if view.SenderKind == SenderThem {
			msg.Seen = true
		}
		views = append(views, view)
	}
	return views
}

// Dump returns the raw ledger as "time|sender|text" lines, oldest first.
// Diagnostic only.
func (r *Room) Dump() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]string, 0, len(r.messages))
	for _, msg := range r.messages {
		sender := msg.Sender
		if sender == "" {
			sender = "system"
		}
		lines = append(lines, fmt.Sprintf("%d|%s|%s", msg.Time, sender, msg.Text))
	}
	return strings.Join(lines, "\n")
}
