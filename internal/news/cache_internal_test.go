package news

import (
	"testing"
	"time"
)

func headlinesFor(url string) Headlines {
	return Headlines{Items: []Item{{Article: Article{URL: url}}}}
}

func TestHeadlinesCacheGetSet(t *testing.T) {
	cache := newHeadlinesCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	cache.set("key", headlinesFor("https://a"), now.Add(time.Hour), now)

	got, ok := cache.get("key", now)
	if !ok {
		t.Fatalf("expected cached headlines to be present")
	}

	if got.Items[0].URL != "https://a" {
		t.Fatalf("unexpected headlines: %+v", got)
	}
}

func TestHeadlinesCacheExpiresEntries(t *testing.T) {
	cache := newHeadlinesCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	cache.set("key", headlinesFor("https://a"), now.Add(time.Minute), now)

	if _, ok := cache.get("key", now.Add(2*time.Minute)); ok {
		t.Fatalf("expected cache entry to expire")
	}

	if len(cache.entries) != 0 {
		t.Fatalf("expected expired cache entry to be removed")
	}
}

func TestHeadlinesCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := newHeadlinesCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	expiresAt := now.Add(time.Hour)

	cache.set("a", headlinesFor("https://a"), expiresAt, now)
	cache.set("b", headlinesFor("https://b"), expiresAt, now)

	if _, ok := cache.get("a", now); !ok {
		t.Fatalf("expected entry a to exist before eviction check")
	}

	cache.set("c", headlinesFor("https://c"), expiresAt, now)

	if _, ok := cache.get("a", now); !ok {
		t.Fatalf("expected entry a to remain after evicting least recently used")
	}

	if _, ok := cache.get("b", now); ok {
		t.Fatalf("expected entry b to be evicted")
	}
}

func TestHeadlinesCacheIgnoresEmptyAndExpired(t *testing.T) {
	cache := newHeadlinesCache(2)
	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	cache.set("empty", Headlines{}, now.Add(time.Hour), now)
	cache.set("stale", headlinesFor("https://a"), now, now)

	if len(cache.entries) != 0 {
		t.Fatalf("expected nothing to be cached, got %d entries", len(cache.entries))
	}

	var disabled *headlinesCache
	disabled.set("key", headlinesFor("https://a"), now.Add(time.Hour), now)
	if _, ok := disabled.get("key", now); ok {
		t.Fatalf("nil cache should never hit")
	}
}
