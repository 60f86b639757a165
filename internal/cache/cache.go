// Package cache holds the lookup cache: a key→value store the authenticity
// verifier uses to avoid re-querying the same normalized title/author pair.
// The contract is read-mostly and append-only within a run; a racing miss may
// duplicate an external call but can never produce an inconsistent value,
// since equal keys always carry equivalent payloads.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is the store interface. Implementations must be safe for concurrent
// use; Set with ttl 0 applies the implementation default.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a versioned cache key from its parts. The version prefix makes
// stale on-disk entries from older layouts miss instead of misparse.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "papercheck:v1:" + hex.EncodeToString(hash[:])
}
