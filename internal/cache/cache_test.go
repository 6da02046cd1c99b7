package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCache(t *testing.T, ttlHours int) *Cache {
	t.Helper()
	c, err := New(filepath.Join(t.TempDir(), "cache"), ttlHours, true)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t, 1)

	hash := HashBytes([]byte("source"))
	if err := c.Set("a/b.py", hash, []byte(`{"total": 3}`)); err != nil {
		t.Fatal(err)
	}

	data, ok := c.Get("a/b.py", hash)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if string(data) != `{"total": 3}` {
		t.Errorf("Data = %q", data)
	}
}

func TestCacheMissOnHashChange(t *testing.T) {
	c := newTestCache(t, 1)

	if err := c.Set("k", HashBytes([]byte("v1")), []byte("payload")); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k", HashBytes([]byte("v2"))); ok {
		t.Error("stale entry returned after source changed")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := newTestCache(t, 1)

	hash := HashBytes([]byte("x"))
	if err := c.Set("k", hash, []byte("payload")); err != nil {
		t.Fatal(err)
	}

	// Backdate the entry past the TTL.
	c.ttl = -time.Second
	if _, ok := c.Get("k", hash); ok {
		t.Error("expired entry returned")
	}

	// The expired entry was removed on read.
	c.ttl = time.Hour
	if _, ok := c.Get("k", hash); ok {
		t.Error("expired entry survived removal")
	}
}

func TestCacheDisabled(t *testing.T) {
	c, err := New("", 1, false)
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set("k", "h", []byte("payload")); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k", "h"); ok {
		t.Error("disabled cache returned a hit")
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
}

func TestCacheInvalidateAndClear(t *testing.T) {
	c := newTestCache(t, 1)

	hash := HashBytes([]byte("x"))
	if err := c.Set("k1", hash, []byte("a")); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("k2", hash, []byte("b")); err != nil {
		t.Fatal(err)
	}

	if err := c.Invalidate("k1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k1", hash); ok {
		t.Error("invalidated entry returned")
	}
	if _, ok := c.Get("k2", hash); !ok {
		t.Error("unrelated entry lost")
	}

	if err := c.Invalidate("never-set"); err != nil {
		t.Errorf("Invalidate on missing key: %v", err)
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k2", hash); ok {
		t.Error("entry survived Clear")
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.py")
	if err := os.WriteFile(path, []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := HashBytes([]byte("x = 1\n")); got != want {
		t.Errorf("HashFile = %s, want %s", got, want)
	}

	if _, err := HashFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("HashFile succeeded on missing file")
	}
}
