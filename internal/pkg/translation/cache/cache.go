// Package cache is the content-addressed translation cache: exact lookups by
// a digest of the normalized input tuple, plus near-duplicate lookup over a
// language pair. It degrades to "no cache" whenever its backend misbehaves.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/jcnm/meeshy/internal/infrastructure/cache/port"
	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
)

const (
	// DefaultTTL bounds how long a cached translation is served.
	DefaultTTL = time.Hour

	// DefaultSimilarityThreshold is the minimum Jaccard score for a
	// near-duplicate match.
	DefaultSimilarityThreshold = 0.8

	keyPrefix = "tc"
)

// Entry is one cached translation result.
type Entry struct {
	Key            string            `json:"key"`
	NormalizedText string            `json:"normalizedText"`
	SourceLanguage string            `json:"sourceLanguage"`
	TargetLanguage string            `json:"targetLanguage"`
	ModelTier      domain.ModelTier  `json:"modelTier"`
	TranslatedText string            `json:"translatedText"`
	ModelUsed      string            `json:"modelUsed"`
	Confidence     *float64          `json:"confidence,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// Match pairs an entry with its similarity score for FindSimilar results.
type Match struct {
	Entry      Entry
	Similarity float64
}

// TranslationCache stores and retrieves translation results through an
// injected key-value backend. All failure paths degrade: lookups report a
// miss, stores log and return, so cache trouble never blocks delivery.
type TranslationCache struct {
	backend port.Cache
	ttl     time.Duration

	now func() time.Time
}

func New(backend port.Cache, ttl time.Duration) *TranslationCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TranslationCache{backend: backend, ttl: ttl, now: time.Now}
}

// Key derives the deterministic cache key for an input tuple.
func Key(text, sourceLang, targetLang string, tier domain.ModelTier) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00%s\x00%s\x00%s",
		Normalize(text),
		domain.NormalizeLanguageCode(sourceLang),
		domain.NormalizeLanguageCode(targetLang),
		tier,
	)))
	return hex.EncodeToString(sum[:])
}

func storageKey(sourceLang, targetLang string, tier domain.ModelTier, digest string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s",
		keyPrefix,
		domain.NormalizeLanguageCode(sourceLang),
		domain.NormalizeLanguageCode(targetLang),
		tier,
		digest,
	)
}

// Lookup returns the cached entry for the exact normalized tuple, or nil on
// a miss. Expired entries are evicted lazily and reported as misses. Backend
// errors are logged and reported as misses.
func (c *TranslationCache) Lookup(ctx context.Context, text, sourceLang, targetLang string, tier domain.ModelTier) *Entry {
	digest := Key(text, sourceLang, targetLang, tier)
	skey := storageKey(sourceLang, targetLang, tier, digest)

	raw, err := c.backend.Get(ctx, skey)
	if err != nil {
		if !errors.Is(err, port.ErrMiss) {
			log.Printf("translation cache: lookup degraded to miss: %v", err)
		}
		return nil
	}

	entry, ok := c.decode(ctx, skey, raw)
	if !ok {
		return nil
	}
	return entry
}

// Store caches a translation result under the tuple's key. Failures are
// logged and swallowed.
func (c *TranslationCache) Store(ctx context.Context, text, sourceLang, targetLang string, tier domain.ModelTier, translated, modelUsed string, confidence *float64) string {
	digest := Key(text, sourceLang, targetLang, tier)
	entry := Entry{
		Key:            digest,
		NormalizedText: Normalize(text),
		SourceLanguage: domain.NormalizeLanguageCode(sourceLang),
		TargetLanguage: domain.NormalizeLanguageCode(targetLang),
		ModelTier:      tier,
		TranslatedText: translated,
		ModelUsed:      modelUsed,
		Confidence:     confidence,
		CreatedAt:      c.now().UTC(),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		log.Printf("translation cache: encode entry: %v", err)
		return digest
	}
	if err := c.backend.Set(ctx, storageKey(sourceLang, targetLang, tier, digest), string(raw), c.ttl); err != nil {
		log.Printf("translation cache: store skipped: %v", err)
	}
	return digest
}

// FindSimilar scans entries for the same (sourceLang, targetLang, tier) and
// returns those whose normalized text reaches the threshold, best first.
// It never substitutes silently: callers opt in to using a result. Backend
// errors yield an empty result.
func (c *TranslationCache) FindSimilar(ctx context.Context, text, sourceLang, targetLang string, tier domain.ModelTier, threshold float64) []Match {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	normalized := Normalize(text)

	pattern := storageKey(sourceLang, targetLang, tier, "*")
	keys, err := c.backend.Scan(ctx, pattern)
	if err != nil {
		log.Printf("translation cache: similarity scan skipped: %v", err)
		return nil
	}

	var matches []Match
	for _, skey := range keys {
		raw, err := c.backend.Get(ctx, skey)
		if err != nil {
			continue
		}
		entry, ok := c.decode(ctx, skey, raw)
		if !ok {
			continue
		}
		if score := jaccard(normalized, entry.NormalizedText); score >= threshold {
			matches = append(matches, Match{Entry: *entry, Similarity: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// decode unmarshals a stored entry and applies lazy TTL eviction; a false
// result means the entry is unusable (corrupt or expired).
func (c *TranslationCache) decode(ctx context.Context, skey, raw string) (*Entry, bool) {
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		log.Printf("translation cache: corrupt entry evicted: %v", err)
		_, _ = c.backend.Del(ctx, skey)
		return nil, false
	}
	if c.now().Sub(entry.CreatedAt) > c.ttl {
		_, _ = c.backend.Del(ctx, skey)
		return nil, false
	}
	return &entry, true
}
