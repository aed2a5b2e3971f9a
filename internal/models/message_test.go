package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"whispergo/backend/internal/models"
)

// TestFormatAge_Brackets verifies the bracket boundaries, which are
// inclusive on the lower bound.
func TestFormatAge_Brackets(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "now"},
		{4999, "now"},
		{5000, "5s"},
		{59999, "59s"},
		{60000, "1m"},
		{61000, "1m"},
		{3599999, "59m"},
		{3600000, "1h"},
		{7200000, "2h"},
		{90000000, "25h"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, models.FormatAge(tc.ms), "FormatAge(%d)", tc.ms)
	}
}

// TestMessageView_SenderKinds verifies sender classification relative to
// the viewer.
func TestMessageView_SenderKinds(t *testing.T) {
	own := models.NewMessage("alice", "hi")
	peer := models.NewMessage("bob", "hello")
	system := models.NewMessage("", "Chat initiated")

	assert.Equal(t, models.SenderYou, own.View("alice").SenderKind)
	assert.Equal(t, models.SenderThem, peer.View("alice").SenderKind)
	assert.Equal(t, models.SenderSystem, system.View("alice").SenderKind)
}

// TestMessageView_DoesNotMutate verifies that View alone never flips the
// seen flag; that side effect belongs to the room render.
func TestMessageView_DoesNotMutate(t *testing.T) {
	msg := models.NewMessage("bob", "hello")

	view := msg.View("alice")
	assert.False(t, view.Seen)
	assert.False(t, msg.Seen, "View must not mark the message seen")
}

// TestNewMessage_FreshTimestamp verifies new messages render as "now".
func TestNewMessage_FreshTimestamp(t *testing.T) {
	msg := models.NewMessage("alice", "hi")
	assert.Equal(t, "now", msg.View("alice").Time)
}
