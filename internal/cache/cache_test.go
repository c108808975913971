package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	k1 := Key("https://www.g2.com/products/slack/reviews")
	k2 := Key("https://www.g2.com/products/slack/reviews?page=2")

	if !strings.HasPrefix(k1, "reviewscope:v1:") {
		t.Errorf("expected versioned prefix, got %q", k1)
	}
	if k1 == k2 {
		t.Error("different URLs must map to different keys")
	}
	if k1 != Key("https://www.g2.com/products/slack/reviews") {
		t.Error("same URL must map to the same key")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}

	if err := c.Set("k", []byte("body"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get("k")
	if !found || string(val) != "body" {
		t.Errorf("Get = (%q, %v), want (body, true)", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("k", []byte("page body"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get("k")
	if !found || string(val) != "page body" {
		t.Errorf("Get = (%q, %v), want (page body, true)", val, found)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("k", []byte("stale"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, found := c.Get("k"); found {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHit(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	// Write through both layers, then drop the memory copy.
	if err := c.Set("k", []byte("body"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.memory.Delete("k"); err != nil {
		t.Fatalf("memory delete failed: %v", err)
	}

	val, found := c.Get("k")
	if !found || string(val) != "body" {
		t.Fatalf("expected disk hit, got (%q, %v)", val, found)
	}

	// The hit must now be served from memory.
	if _, found := c.memory.Get("k"); !found {
		t.Error("expected disk hit to be promoted into memory")
	}
}

func TestDisabled(t *testing.T) {
	var c Cache = Disabled{}

	if err := c.Set("k", []byte("x"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("disabled cache must never hit")
	}
}
