package chatcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRandomID_Shape checks length and cookie/URL safety of the encoding.
func TestRandomID_Shape(t *testing.T) {
	id := randomID()

	// 21 bytes come out as 28 unpadded base64url characters.
	assert.Len(t, id, 28)
	for _, r := range id {
		valid := r == '-' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		require.True(t, valid, "character %q is not URL-safe", r)
	}
}

// TestNewID_NoCollisions draws 100k identifiers against a growing directory
// and expects no repeat, within the batch or against pre-existing keys.
func TestNewID_NoCollisions(t *testing.T) {
	existing := map[string]bool{
		"already-there": true,
	}
	taken := func(id string) bool { return existing[id] }

	for i := 0; i < 100_000; i++ {
		id := newID(taken)
		require.False(t, existing[id], "identifier %q repeated at draw %d", id, i)
		existing[id] = true
	}
}

// TestNewID_RetriesOnCollision forces collisions through the taken callback
// and checks the generator keeps drawing until a free ID comes out.
func TestNewID_RetriesOnCollision(t *testing.T) {
	rejections := 0
	id := newID(func(string) bool {
		if rejections < 3 {
			rejections++
			return true
		}
		return false
	})

	assert.Equal(t, 3, rejections)
	assert.NotEmpty(t, id)
}
