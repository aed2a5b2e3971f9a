package models

// Visitor is an anonymous participant, keyed by the opaque ID stored in the
// client's cookie. All fields are guarded by the core service lock; the
// struct itself carries no synchronization.
type Visitor struct {
	ID        string
	FirstSeen int64
	LastSeen  int64
	// ChatCount counts the rooms this visitor has been placed in. Pure
	// bookkeeping, only surfaced in logs.
	ChatCount int
	// RoomID is empty while the visitor is not in a room.
	RoomID string
}

// NewVisitor creates a visitor first seen right now.
func NewVisitor(id string) *Visitor {
	now := NowMillis()
	return &Visitor{
		ID:        id,
		FirstSeen: now,
		LastSeen:  now,
	}
}

// Touch refreshes LastSeen. Called on every contact from the visitor.
func (v *Visitor) Touch() {
	v.LastSeen = NowMillis()
}

// IdleMillis reports how long the visitor has been silent as of now.
func (v *Visitor) IdleMillis(now int64) int64 {
	return now - v.LastSeen
}
