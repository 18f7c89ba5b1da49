package core

import (
	"encoding/hex"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// NewID returns a random 24 character hex id.
func NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:12])
}

// MakeID derives a stable id from text, so the same input always lands on the same row.
func MakeID(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16])
}
