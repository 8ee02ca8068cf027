package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	qport "github.com/jcnm/meeshy/internal/infrastructure/queue/port"
	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
	"github.com/jcnm/meeshy/internal/pkg/translation/distribution"
	repository "github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/port"
)

// FanOutMessageTaskType is the queue task name for deriving and dispatching
// a stored message's per-language translation units.
const FanOutMessageTaskType = "translation:fanout_message"

// FanOutMessageTaskPayload is the JSON payload transported via the queue.
type FanOutMessageTaskPayload struct {
	MessageID string `json:"messageId"`
}

// IngestMessageInput carries a new message from the ingestion path.
type IngestMessageInput struct {
	ConversationID   string
	SenderID         string
	Content          string
	OriginalLanguage string
}

// IngestMessageUseCase is the entry point once a message reaches the
// backend: persist it, make the original visible to everyone immediately,
// and hand fan-out to the background queue. Translations never gate the
// original's visibility.
type IngestMessageUseCase struct {
	Repo        repository.TranslationRepository
	Queue       qport.Client
	Distributor *distribution.Distributor
}

func NewIngestMessageUseCase(repo repository.TranslationRepository, queue qport.Client, dist *distribution.Distributor) *IngestMessageUseCase {
	return &IngestMessageUseCase{Repo: repo, Queue: queue, Distributor: dist}
}

func (uc *IngestMessageUseCase) Execute(ctx context.Context, in IngestMessageInput) (*domain.Message, error) {
	if in.ConversationID == "" || in.SenderID == "" {
		return nil, fmt.Errorf("conversationId and senderId are required")
	}

	isParticipant, err := uc.Repo.IsParticipant(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !isParticipant {
		return nil, domain.ErrNotParticipant
	}

	msg, err := domain.NewMessage(domain.Message{
		ConversationID:   in.ConversationID,
		SenderID:         in.SenderID,
		Content:          in.Content,
		OriginalLanguage: in.OriginalLanguage,
	})
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	// Original first, unconditionally.
	_ = uc.Distributor.MessageCreated(ctx, *msg)

	payload, err := json.Marshal(FanOutMessageTaskPayload{MessageID: msg.ID})
	if err != nil {
		return nil, err
	}
	if _, err := uc.Queue.Enqueue(ctx, qport.Task{Type: FanOutMessageTaskType, Payload: payload}, qport.EnqueueOption{
		Queue:    "translation",
		MaxRetry: 5,
	}); err != nil {
		// The message is durable and visible; the caller learns fan-out
		// did not start and may retry it.
		return msg, fmt.Errorf("%w: %v", ErrQueue, err)
	}
	return msg, nil
}
