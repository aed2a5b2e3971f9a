package models

import (
	"fmt"
	"time"
)

// SenderKind classifies who a message came from, relative to the viewer.
type SenderKind string

const (
	SenderYou    SenderKind = "you"
	SenderThem   SenderKind = "them"
	SenderSystem SenderKind = "system"
)

// Message is a single entry in a room's ledger. An empty Sender marks a
// system-generated message ("Chat initiated", "User left the room").
type Message struct {
	Sender string
	Time   int64
	Text   string
	// Seen flips to true once the message has been rendered to the
	// participant who did NOT send it. The sender's own reads never touch it.
	Seen bool
}

// MessageView is a message rendered from one participant's point of view.
type MessageView struct {
	SenderKind SenderKind `json:"sender_kind"`
	Time       string     `json:"time"`
	Text       string     `json:"text"`
	Seen       bool       `json:"seen"`
}

// NewMessage creates a user message stamped with the current time.
// Pass an empty sender for a system message.
func NewMessage(sender, text string) Message {
	return Message{
		Sender: sender,
		Time:   NowMillis(),
		Text:   text,
	}
}

// View renders the message for the given viewer. It does not mutate the
// message; the seen side effect belongs to Room.RenderFor.
func (m *Message) View(viewer string) MessageView {
	kind := SenderSystem
	if m.Sender != "" {
		if m.Sender == viewer {
			kind = SenderYou
		} else {
			kind = SenderThem
		}
	}
	return MessageView{
		SenderKind: kind,
		Time:       FormatAge(NowMillis() - m.Time),
		Text:       m.Text,
		Seen:       m.Seen,
	}
}

// FormatAge turns an age in milliseconds into a coarse relative label.
// Brackets are inclusive on their lower bound: exactly 5000ms is "5s".
func FormatAge(ms int64) string {
	switch {
	case ms < 5_000:
		return "now"
	case ms < 60_000:
		return fmt.Sprintf("%ds", ms/1_000)
	case ms < 3_600_000:
		return fmt.Sprintf("%dm", ms/60_000)
	default:
		return fmt.Sprintf("%dh", ms/3_600_000)
	}
}

// NowMillis is the single timestamp source for the whole model:
// milliseconds since the Unix epoch.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
