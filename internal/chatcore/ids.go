package chatcore

import (
	"crypto/rand"
	"encoding/base64"
)

// idBytes gives 168 bits of entropy per identifier, enough that a collision
// against an in-memory directory is practically impossible.
const idBytes = 21

// randomID draws a fresh opaque identifier: URL-safe, unpadded, fine as a
// map key and as a raw cookie value. Entropy exhaustion is unrecoverable.
func randomID() string {
	buf := make([]byte, idBytes)
	if _, err := rand.Read(buf); err != nil {
		panic("chatcore: random source exhausted: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// newID retries randomID until taken reports the candidate as free.
// Generate-and-check, never derived from content.
func newID(taken func(string) bool) string {
	for {
		id := randomID()
		if !taken(id) {
			return id
		}
	}
}
