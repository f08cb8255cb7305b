package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	payload := []byte(`{"games":[{"homeTeam":"Miami Heat"}]}`)

	c.Set("odds_v2", payload, time.Minute)

	got, writtenAt, ok := c.Get("odds_v2")
	if !ok {
		t.Fatal("expected hit before TTL expiry")
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload not byte-identical: %q", got)
	}
	if writtenAt.IsZero() {
		t.Error("write time missing")
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", []byte("v"), 30*time.Second)

	now = now.Add(31 * time.Second)
	if _, _, ok := c.Get("k"); ok {
		t.Fatal("expired entry must read as a miss")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry must be evicted on read, %d left", c.Len())
	}
}

func TestMemoryCacheGetStale(t *testing.T) {
	c := NewMemoryCache()
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("k", []byte("old"), time.Second)
	now = now.Add(time.Hour)

	payload, _, ok := c.GetStale("k")
	if !ok || string(payload) != "old" {
		t.Errorf("GetStale must ignore expiry, got (%q, %v)", payload, ok)
	}
}

func TestMemoryCacheDeletePrefix(t *testing.T) {
	c := NewMemoryCache()
	c.Set("player_props_v2_2026-01-10", []byte("a"), time.Minute)
	c.Set("player_props_v2_2026-01-11", []byte("b"), time.Minute)
	c.Set("odds_v2", []byte("c"), time.Minute)

	if n := c.DeletePrefix("player_props_v2_"); n != 2 {
		t.Errorf("DeletePrefix removed %d entries, want 2", n)
	}
	if _, _, ok := c.Get("odds_v2"); !ok {
		t.Error("unrelated key must survive DeletePrefix")
	}
}
