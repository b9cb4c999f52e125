// Package cache stores parse results keyed by document content and
// provenance, layered across process memory and disk. Entries are typed
// parse results: serialization is a disk-layer concern, callers never
// see bytes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ppiankov/zuordnung/internal/model"
)

// Cache stores parse results by key
type Cache interface {
	Get(key string) (*model.ParseResult, bool)
	Set(key string, result *model.ParseResult, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from the given parts. The parts cover
// document content and provenance, so the same bytes uploaded under a
// different source document or source type get their own entry.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "zuordnung:v1:" + hex.EncodeToString(hash[:])
}
