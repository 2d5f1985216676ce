// Package cache stores scan verdicts so repeat scans of identical content
// skip the network. Only scan-only verdicts are cached; generated answers
// never are.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the storage contract shared by the memory and disk layers.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives the cache key for one page. Both the URL and the exact markup
// participate so a changed page never replays a stale verdict.
func Key(pageURL, html string) string {
	h := sha256.New()
	h.Write([]byte(pageURL))
	h.Write([]byte{0})
	h.Write([]byte(html))
	return "pageguard:v1:" + hex.EncodeToString(h.Sum(nil))
}
