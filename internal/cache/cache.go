// Package cache provides the layered page cache used by the scrape client.
// Review pages change slowly; caching keeps repeat runs against the same
// company from re-hitting the platforms.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for page caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key generates a cache key from a page URL.
func Key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "reviewscope:v1:" + hex.EncodeToString(hash[:])
}

// Disabled is a no-op cache used when caching is turned off.
type Disabled struct{}

func (Disabled) Get(string) ([]byte, bool)               { return nil, false }
func (Disabled) Set(string, []byte, time.Duration) error { return nil }
func (Disabled) Delete(string) error                     { return nil }
func (Disabled) Clear() error                            { return nil }
