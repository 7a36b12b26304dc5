package cache

import (
	"errors"
	"testing"
	"time"
)

func TestGetOrLoad_CachesUntilExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New[[]string](time.Minute)
	c.now = func() time.Time { return now }

	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"Fiction"}, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := c.GetOrLoad("categories", load); err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("load called %d times, want 1", calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.GetOrLoad("categories", load); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected reload after expiry, calls=%d", calls)
	}
}

func TestGetOrLoad_DoesNotCacheErrors(t *testing.T) {
	c := New[int](time.Minute)

	calls := 0
	failing := func() (int, error) {
		calls++
		return 0, errors.New("db down")
	}

	_, _ = c.GetOrLoad("k", failing)
	_, _ = c.GetOrLoad("k", failing)

	if calls != 2 {
		t.Fatalf("errors should not be cached, calls=%d", calls)
	}
}

func TestDelete(t *testing.T) {
	c := New[string](0)
	c.Set("k", "v")
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected key to be gone")
	}
}

func TestGetOrLoad_DeleteDuringLoadIsNotOverwritten(t *testing.T) {
	c := New[[]string](time.Minute)

	stale := func() ([]string, error) {
		// a write lands while the old list is being read
		c.Delete("categories")
		return []string{"Fiction"}, nil
	}

	got, err := c.GetOrLoad("categories", stale)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("caller should still get the loaded value, got %v", got)
	}
	if _, ok := c.Get("categories"); ok {
		t.Fatalf("a load that overlapped Delete must not be cached")
	}

	fresh := func() ([]string, error) { return []string{"Fiction", "Science"}, nil }
	if _, err := c.GetOrLoad("categories", fresh); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if v, ok := c.Get("categories"); !ok || len(v) != 2 {
		t.Fatalf("expected fresh list cached, got %v %v", v, ok)
	}
}
