package translation

import "time"

// ModelTier selects the cost/quality class of the inference model.
type ModelTier string

const (
	TierBasic   ModelTier = "basic"
	TierMedium  ModelTier = "medium"
	TierPremium ModelTier = "premium"
)

// Fallback returns the next cheaper tier to retry with after a failure,
// or ok=false when there is nothing below the current tier.
func (t ModelTier) Fallback() (ModelTier, bool) {
	switch t {
	case TierPremium:
		return TierMedium, true
	case TierMedium:
		return TierBasic, true
	default:
		return "", false
	}
}

// Valid reports whether t is one of the known tiers.
func (t ModelTier) Valid() bool {
	switch t {
	case TierBasic, TierMedium, TierPremium:
		return true
	}
	return false
}

// TranslationArtifact is one persisted translation of one message into one
// target language. At most one row exists per (MessageID, TargetLanguage);
// the store enforces this structurally. Artifacts are never updated in
// place; an explicit retranslation deletes the old row first.
type TranslationArtifact struct {
	ID                string    `db:"id"`
	MessageID         string    `db:"message_id"`
	SourceLanguage    string    `db:"source_language"`
	TargetLanguage    string    `db:"target_language"`
	TranslatedContent string    `db:"translated_content"`
	TranslationModel  string    `db:"translation_model"`
	CacheKey          string    `db:"cache_key"`
	ConfidenceScore   *float64  `db:"confidence_score"`
	CreatedAt         time.Time `db:"created_at"`
}
