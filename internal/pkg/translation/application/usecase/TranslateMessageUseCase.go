package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	qport "github.com/jcnm/meeshy/internal/infrastructure/queue/port"
	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
	"github.com/jcnm/meeshy/internal/pkg/translation/distribution"
	repository "github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/port"
	"github.com/jcnm/meeshy/internal/pkg/translation/resolver"
)

// TranslateLanguageTaskType is the queue task name for one (message, target
// language) unit. Payload encoding lives here so the fan-out and the worker
// registration agree on it.
const TranslateLanguageTaskType = "translation:translate_language"

// TranslateLanguageTaskPayload is the JSON payload transported via the queue.
type TranslateLanguageTaskPayload struct {
	MessageID      string `json:"messageId"`
	TargetLanguage string `json:"targetLanguage"`
	BypassCache    bool   `json:"bypassCache,omitempty"`
}

// TranslateMessageInput names the message to fan out.
type TranslateMessageInput struct {
	MessageID string
}

// TranslateMessageUseCase is the fan-out step: it snapshots the roster,
// derives the required language set, and dispatches one independently
// schedulable unit per target language. It never translates inline; the
// worker pool bounds concurrency against the inference capability.
type TranslateMessageUseCase struct {
	Repo        repository.TranslationRepository
	Members     repository.MembershipProvider
	Resolver    *resolver.Resolver
	Queue       qport.Client
	Distributor *distribution.Distributor
}

func NewTranslateMessageUseCase(repo repository.TranslationRepository, members repository.MembershipProvider, res *resolver.Resolver, queue qport.Client, dist *distribution.Distributor) *TranslateMessageUseCase {
	return &TranslateMessageUseCase{Repo: repo, Members: members, Resolver: res, Queue: queue, Distributor: dist}
}

// Execute dispatches the fan-out. An unavailable membership snapshot is
// treated as "no targets": the original message is already visible and must
// not be blocked. Enqueue failures are isolated per language.
func (uc *TranslateMessageUseCase) Execute(ctx context.Context, in TranslateMessageInput) ([]string, error) {
	if in.MessageID == "" {
		return nil, fmt.Errorf("messageId is required")
	}

	msg, err := uc.Repo.GetMessage(ctx, in.MessageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if msg.IsDeleted {
		return nil, nil
	}

	profiles, err := uc.Members.GetActiveParticipants(ctx, msg.ConversationID)
	if err != nil {
		log.Printf("membership snapshot unavailable for conversation %s, skipping fan-out: %v", msg.ConversationID, err)
		_ = uc.Distributor.TranslationsComplete(ctx, msg.ConversationID, msg.ID)
		return nil, nil
	}

	targets := uc.Resolver.RequiredLanguages(profiles, msg.OriginalLanguage)
	if len(targets) == 0 {
		// Nothing to do: the message is fully distributed as soon as the
		// original is out.
		_ = uc.Distributor.TranslationsComplete(ctx, msg.ConversationID, msg.ID)
		return nil, nil
	}

	var enqueueErrs []error
	for _, lang := range targets {
		if err := uc.EnqueueLanguage(ctx, msg.ID, lang, false); err != nil {
			enqueueErrs = append(enqueueErrs, fmt.Errorf("lang %s: %w", lang, err))
		}
	}
	if len(enqueueErrs) > 0 {
		// Retrying the fan-out is safe: queue-level uniqueness and the
		// store's conditional insert absorb duplicate dispatches.
		return targets, errors.Join(enqueueErrs...)
	}
	return targets, nil
}

// EnqueueLanguage dispatches a single unit. Uniqueness within the TTL window
// is best-effort dedupe at the queue; the store constraint is authoritative.
func (uc *TranslateMessageUseCase) EnqueueLanguage(ctx context.Context, messageID, targetLanguage string, bypassCache bool) error {
	payload, err := json.Marshal(TranslateLanguageTaskPayload{
		MessageID:      messageID,
		TargetLanguage: domain.NormalizeLanguageCode(targetLanguage),
		BypassCache:    bypassCache,
	})
	if err != nil {
		return err
	}
	_, err = uc.Queue.Enqueue(ctx, qport.Task{Type: TranslateLanguageTaskType, Payload: payload}, qport.EnqueueOption{
		Queue:     "translation",
		MaxRetry:  3,
		UniqueTTL: 2 * time.Minute,
	})
	return err
}
