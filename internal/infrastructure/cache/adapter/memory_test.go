package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jcnm/meeshy/internal/infrastructure/cache/port"
)

func TestMemoryCache_SetGetDel(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "v" {
		t.Errorf("got %q, want v", got)
	}

	removed, err := c.Del(ctx, "k", "missing")
	if err != nil {
		t.Fatalf("del: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, port.ErrMiss) {
		t.Errorf("err = %v, want ErrMiss after delete", err)
	}
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := c.Get(ctx, "k"); !errors.Is(err, port.ErrMiss) {
		t.Errorf("err = %v, want ErrMiss past TTL", err)
	}
}

func TestMemoryCache_ScanMatchesPattern(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	for _, k := range []string{"tc:en:fr:medium:a", "tc:en:fr:medium:b", "tc:en:de:medium:c"} {
		if err := c.Set(ctx, k, "v", time.Minute); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}

	keys, err := c.Scan(ctx, "tc:en:fr:medium:*")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("keys = %v, want the two en->fr entries", keys)
	}
}
