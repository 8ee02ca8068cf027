package repository

import (
	"context"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
)

// TranslationRepository defines persistence operations for messages and
// translation artifacts.
//
// InsertArtifact is a conditional insert keyed on (messageID, targetLanguage):
// when a row already exists the call is a no-op, inserted is false, and the
// existing row is returned as authoritative. This is the at-most-once
// mechanism under concurrent or retried fan-out triggers; implementations
// must enforce it at the store level (a uniqueness constraint), not with
// in-process locking, because multiple orchestrator instances race on it.
type TranslationRepository interface {
	SaveMessage(ctx context.Context, m domain.Message) (string, error)
	GetMessage(ctx context.Context, messageID string) (*domain.Message, error)

	InsertArtifact(ctx context.Context, a domain.TranslationArtifact) (domain.TranslationArtifact, bool, error)
	GetArtifactsByMessage(ctx context.Context, messageID string) ([]domain.TranslationArtifact, error)
	DeleteArtifact(ctx context.Context, messageID string, targetLanguage string) error

	IsParticipant(ctx context.Context, conversationID string, participantID string) (bool, error)
}
