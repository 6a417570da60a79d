package pricecache

import (
	"testing"
	"time"
)

func TestCache(t *testing.T) {
	t.Run("stores and retrieves within the window", func(t *testing.T) {
		c := New[string](time.Minute)

		key := c.At("trading212", "AAPL")
		c.Put(key, "Apple Inc")

		got, ok := c.Get(key)
		if !ok || got != "Apple Inc" {
			t.Errorf("Expected cached value, got %q, %v", got, ok)
		}
	})

	t.Run("misses on an unknown key", func(t *testing.T) {
		c := New[string](time.Minute)

		if _, ok := c.Get(c.At("trading212", "AAPL")); ok {
			t.Error("Expected a miss")
		}
	})

	t.Run("entries expire after the ttl", func(t *testing.T) {
		c := New[string](time.Minute)
		base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return base }

		key := c.At("trading212", "AAPL")
		c.Put(key, "Apple Inc")

		c.now = func() time.Time { return base.Add(2 * time.Minute) }
		if _, ok := c.Get(key); ok {
			t.Error("Expected the entry to be expired")
		}
	})

	t.Run("keys in different windows do not collide", func(t *testing.T) {
		c := New[string](time.Minute)
		base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return base }

		first := c.At("trading212", "AAPL")

		c.now = func() time.Time { return base.Add(2 * time.Minute) }
		second := c.At("trading212", "AAPL")

		if first == second {
			t.Error("Expected different keys across windows")
		}
	})

	t.Run("invalidate source drops only that source", func(t *testing.T) {
		c := New[string](time.Minute)

		brokerKey := c.At("trading212", "AAPL")
		exchangeKey := c.At("binance", "symbols")
		c.Put(brokerKey, "a")
		c.Put(exchangeKey, "b")

		c.InvalidateSource("trading212")

		if _, ok := c.Get(brokerKey); ok {
			t.Error("Expected broker entry to be dropped")
		}
		if _, ok := c.Get(exchangeKey); !ok {
			t.Error("Expected exchange entry to survive")
		}
	})

	t.Run("purge removes expired entries", func(t *testing.T) {
		c := New[string](time.Minute)
		base := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
		c.now = func() time.Time { return base }

		key := c.At("trading212", "AAPL")
		c.Put(key, "Apple Inc")

		c.now = func() time.Time { return base.Add(2 * time.Minute) }
		c.PurgeExpired()

		c.mu.RLock()
		n := len(c.entries)
		c.mu.RUnlock()
		if n != 0 {
			t.Errorf("Expected empty cache after purge, got %d entries", n)
		}
	})
}
