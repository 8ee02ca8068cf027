package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
	tcache "github.com/jcnm/meeshy/internal/pkg/translation/cache"
	"github.com/jcnm/meeshy/internal/pkg/translation/distribution"
	infport "github.com/jcnm/meeshy/internal/pkg/translation/inference/port"
	repository "github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/port"
)

// TranslateLanguageInput identifies one (message, target language) unit of
// work. Units are independently schedulable; within a unit the sequence
// cache-check -> translate -> persist -> distribute is strictly sequential.
type TranslateLanguageInput struct {
	MessageID      string
	TargetLanguage string

	// BypassCache forces a fresh inference call; set by the explicit
	// retranslation path.
	BypassCache bool
}

// TranslateLanguageConfig tunes a unit's behavior.
type TranslateLanguageConfig struct {
	PreferredTier domain.ModelTier
	CallTimeout   time.Duration

	// AcceptSimilar opts in to serving a near-duplicate cache entry when the
	// exact key misses. Off by default; similarity never substitutes a
	// translation silently.
	AcceptSimilar       bool
	SimilarityThreshold float64
}

// TranslateLanguageUseCase produces, persists, and distributes the artifact
// for one (message, target language) pair. Failures are contained: a failed
// unit emits an explicit translation-failed signal and never affects sibling
// languages.
type TranslateLanguageUseCase struct {
	Repo        repository.TranslationRepository
	Cache       *tcache.TranslationCache
	Provider    infport.Provider
	Distributor *distribution.Distributor
	Config      TranslateLanguageConfig
}

func NewTranslateLanguageUseCase(repo repository.TranslationRepository, cache *tcache.TranslationCache, provider infport.Provider, dist *distribution.Distributor, cfg TranslateLanguageConfig) *TranslateLanguageUseCase {
	if cfg.PreferredTier == "" || !cfg.PreferredTier.Valid() {
		cfg.PreferredTier = domain.TierMedium
	}
	return &TranslateLanguageUseCase{Repo: repo, Cache: cache, Provider: provider, Distributor: dist, Config: cfg}
}

// Execute runs the unit to a terminal state. A translation failure is
// terminal for this attempt and returns nil after signaling, so the queue
// does not spin on an unavailable model; persistence failures return
// ErrPersistence and may be retried safely thanks to the conditional insert.
func (uc *TranslateLanguageUseCase) Execute(ctx context.Context, in TranslateLanguageInput) (*domain.TranslationArtifact, error) {
	if in.MessageID == "" || in.TargetLanguage == "" {
		return nil, fmt.Errorf("messageId and targetLanguage are required")
	}
	target := domain.NormalizeLanguageCode(in.TargetLanguage)

	msg, err := uc.Repo.GetMessage(ctx, in.MessageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if msg.IsDeleted || target == msg.OriginalLanguage {
		return nil, nil
	}

	translated, modelUsed, confidence, cacheKey, fromCache := uc.lookup(ctx, msg, target, in.BypassCache)

	if !fromCache {
		attempt := NewAttempt(uc.Provider, uc.Config.CallTimeout)
		res, tierUsed, err := attempt.Run(ctx, infport.Request{
			Text:           msg.Content,
			SourceLanguage: msg.OriginalLanguage,
			TargetLanguage: target,
			Tier:           uc.Config.PreferredTier,
		})
		if err != nil {
			log.Printf("translation unavailable for message %s lang %s: %v", msg.ID, target, err)
			_ = uc.Distributor.TranslationFailed(ctx, msg.ConversationID, msg.ID, target, "translation unavailable")
			return nil, nil
		}
		translated, modelUsed, confidence = res.Text, res.ModelUsed, res.Confidence
		cacheKey = uc.Cache.Store(ctx, msg.Content, msg.OriginalLanguage, target, tierUsed, res.Text, res.ModelUsed, res.Confidence)
	}

	artifact := domain.TranslationArtifact{
		MessageID:         msg.ID,
		SourceLanguage:    msg.OriginalLanguage,
		TargetLanguage:    target,
		TranslatedContent: translated,
		TranslationModel:  modelUsed,
		CacheKey:          cacheKey,
		ConfidenceScore:   confidence,
	}

	// Conditional insert: a conflict means a racer already persisted this
	// pair; the existing row wins and the outcome is still success.
	authoritative, inserted, err := uc.Repo.InsertArtifact(ctx, artifact)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if inserted {
		_ = uc.Distributor.ArtifactReady(ctx, msg.ConversationID, authoritative)
	}
	return &authoritative, nil
}

// lookup consults the cache at the preferred tier, walking down tiers so a
// fallback-produced entry still hits. With AcceptSimilar enabled a ranked
// near-duplicate may serve as the result.
func (uc *TranslateLanguageUseCase) lookup(ctx context.Context, msg *domain.Message, target string, bypass bool) (text, model string, confidence *float64, cacheKey string, ok bool) {
	if bypass {
		return "", "", nil, "", false
	}
	for tier := uc.Config.PreferredTier; ; {
		if entry := uc.Cache.Lookup(ctx, msg.Content, msg.OriginalLanguage, target, tier); entry != nil {
			return entry.TranslatedText, entry.ModelUsed, entry.Confidence, entry.Key, true
		}
		next, more := tier.Fallback()
		if !more {
			break
		}
		tier = next
	}

	if uc.Config.AcceptSimilar {
		matches := uc.Cache.FindSimilar(ctx, msg.Content, msg.OriginalLanguage, target, uc.Config.PreferredTier, uc.Config.SimilarityThreshold)
		if len(matches) > 0 {
			best := matches[0].Entry
			return best.TranslatedText, best.ModelUsed, best.Confidence, best.Key, true
		}
	}
	return "", "", nil, "", false
}
