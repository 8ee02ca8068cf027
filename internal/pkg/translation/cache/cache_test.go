// Package cache contains tests for normalization, keying, and lookups.
package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	cacheadapter "github.com/jcnm/meeshy/internal/infrastructure/cache/adapter"
	"github.com/jcnm/meeshy/internal/infrastructure/cache/port"
	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
)

// ---------------------------------------------------------------------------
// Normalize
// ---------------------------------------------------------------------------

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello!!", "hello"},
		{"hello", "hello"},
		{"  Bonjour   le\tmonde  ", "bonjour le monde"},
		{"Héllo, wörld!", "hello world"},
		{"¿Qué tal?", "que tal"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Key
// ---------------------------------------------------------------------------

func TestKey_AbsorbsSuperficialDifferences(t *testing.T) {
	a := Key("Hello!!", "en", "fr", domain.TierBasic)
	b := Key("hello", "en", "fr", domain.TierBasic)
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}

	c := Key("hello", "en", "fr", domain.TierPremium)
	if a == c {
		t.Error("tier must be part of the key")
	}
	d := Key("hello", "en", "de", domain.TierBasic)
	if a == d {
		t.Error("target language must be part of the key")
	}
}

// ---------------------------------------------------------------------------
// Lookup / Store
// ---------------------------------------------------------------------------

func newTestCache(t *testing.T) (*TranslationCache, *cacheadapter.MemoryCache) {
	t.Helper()
	backend := cacheadapter.NewMemoryCache()
	return New(backend, time.Hour), backend
}

func TestStoreThenLookup(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	conf := 0.93
	c.Store(ctx, "Hola", "es", "en", domain.TierBasic, "Hello", "nmt-basic-1", &conf)

	got := c.Lookup(ctx, "hola!!", "es", "en", domain.TierBasic)
	if got == nil {
		t.Fatal("expected a hit for a normalization-equivalent input")
	}
	if got.TranslatedText != "Hello" {
		t.Errorf("TranslatedText = %q, want %q", got.TranslatedText, "Hello")
	}
	if got.Confidence == nil || *got.Confidence != conf {
		t.Errorf("Confidence = %v, want %v", got.Confidence, conf)
	}

	if miss := c.Lookup(ctx, "hola", "es", "en", domain.TierPremium); miss != nil {
		t.Error("different tier must miss")
	}
}

func TestStore_IdempotentForEquivalentInputs(t *testing.T) {
	c, backend := newTestCache(t)
	ctx := context.Background()

	k1 := c.Store(ctx, "Hello!!", "en", "fr", domain.TierBasic, "Salut", "m", nil)
	k2 := c.Store(ctx, "hello", "en", "fr", domain.TierBasic, "Salut", "m", nil)
	if k1 != k2 {
		t.Errorf("equivalent inputs produced distinct keys: %q vs %q", k1, k2)
	}

	keys, err := backend.Scan(ctx, "tc:en:fr:*")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(keys) != 1 {
		t.Errorf("got %d stored entries, want 1", len(keys))
	}
}

func TestLookup_ExpiredEntryIsMissAndEvicted(t *testing.T) {
	c, backend := newTestCache(t)
	ctx := context.Background()

	c.Store(ctx, "hola", "es", "en", domain.TierBasic, "hello", "m", nil)

	// Jump past the TTL.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if got := c.Lookup(ctx, "hola", "es", "en", domain.TierBasic); got != nil {
		t.Fatal("expired entry must be a miss")
	}
	keys, _ := backend.Scan(ctx, "tc:es:en:*")
	if len(keys) != 0 {
		t.Errorf("expired entry not evicted, %d keys remain", len(keys))
	}
}

// failingBackend simulates an unreachable store.
type failingBackend struct{}

var errBackendDown = errors.New("backend down")

func (failingBackend) Get(context.Context, string) (string, error) {
	return "", errBackendDown
}

func (failingBackend) Set(context.Context, string, string, time.Duration) error {
	return errBackendDown
}

func (failingBackend) Del(context.Context, ...string) (int64, error) {
	return 0, errBackendDown
}

func (failingBackend) Scan(context.Context, string) ([]string, error) {
	return nil, errBackendDown
}

func (failingBackend) Ping(context.Context) error { return errBackendDown }

func (failingBackend) Close() error { return nil }

var _ port.Cache = failingBackend{}

func TestBackendFailureDegradesToMiss(t *testing.T) {
	c := New(failingBackend{}, time.Hour)
	ctx := context.Background()

	if got := c.Lookup(ctx, "hola", "es", "en", domain.TierBasic); got != nil {
		t.Error("unreachable backend must read as a miss")
	}
	// Store must not panic or propagate.
	c.Store(ctx, "hola", "es", "en", domain.TierBasic, "hello", "m", nil)
	if got := c.FindSimilar(ctx, "hola", "es", "en", domain.TierBasic, 0.5); got != nil {
		t.Error("unreachable backend must yield no similarity matches")
	}
}

// ---------------------------------------------------------------------------
// FindSimilar
// ---------------------------------------------------------------------------

func TestFindSimilar_RankedAboveThreshold(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Store(ctx, "the quick brown fox jumps", "en", "fr", domain.TierBasic, "t1", "m", nil)
	c.Store(ctx, "the quick brown fox jumps high", "en", "fr", domain.TierBasic, "t2", "m", nil)
	c.Store(ctx, "completely unrelated sentence here", "en", "fr", domain.TierBasic, "t3", "m", nil)
	// Same text, different pair: must never be considered.
	c.Store(ctx, "the quick brown fox jumps", "en", "de", domain.TierBasic, "t4", "m", nil)

	matches := c.FindSimilar(ctx, "The quick brown fox jumps!", "en", "fr", domain.TierBasic, 0.8)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Entry.TranslatedText != "t1" {
		t.Errorf("best match = %q, want exact-text entry t1", matches[0].Entry.TranslatedText)
	}
	if matches[0].Similarity != 1 {
		t.Errorf("best similarity = %v, want 1", matches[0].Similarity)
	}
	if matches[1].Entry.TranslatedText != "t2" {
		t.Errorf("second match = %q, want t2", matches[1].Entry.TranslatedText)
	}
	for _, m := range matches {
		if m.Entry.TargetLanguage != "fr" {
			t.Errorf("match leaked from another language pair: %+v", m.Entry)
		}
	}
}

// ---------------------------------------------------------------------------
// jaccard
// ---------------------------------------------------------------------------

func TestJaccard(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{"a b c", "a b c", 1},
		{"a b c d", "a b c", 0.75},
		{"a b", "c d", 0},
		{"", "", 1},
	}
	for _, tc := range cases {
		if got := jaccard(tc.a, tc.b); got != tc.want {
			t.Errorf("jaccard(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
