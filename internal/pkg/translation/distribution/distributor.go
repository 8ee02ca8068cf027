// Package distribution moves originals and translation artifacts to
// connected participants: the distributor publishes events onto the shared
// bus, and each node's bridge delivers them to its local sessions, selecting
// the variant matching each participant's resolved language preference.
package distribution

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	pubsub "github.com/jcnm/meeshy/internal/infrastructure/pubsub/port"
	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
)

// Distributor is the publish side. A delivery problem on any node never
// affects persistence: artifacts are durable before they are announced, and
// disconnected participants catch up through the pull path.
type Distributor struct {
	pub pubsub.Publisher
}

func NewDistributor(pub pubsub.Publisher) *Distributor {
	return &Distributor{pub: pub}
}

func (d *Distributor) publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("distribution: encode %s event: %w", ev.Type, err)
	}
	if err := d.pub.Publish(ctx, EventsChannel, payload); err != nil {
		// Best-effort: the artifact store remains the source of truth.
		log.Printf("distribution: publish %s event: %v", ev.Type, err)
	}
	return nil
}

// MessageCreated announces the original message; it reaches every connected
// session in the conversation immediately, tagged with its source language.
func (d *Distributor) MessageCreated(ctx context.Context, m domain.Message) error {
	return d.publish(ctx, Event{
		Type:             EventMessage,
		ConversationID:   m.ConversationID,
		MessageID:        m.ID,
		SenderID:         m.SenderID,
		Content:          m.Content,
		OriginalLanguage: m.OriginalLanguage,
		CreatedAt:        m.CreatedAt,
	})
}

// ArtifactReady announces one persisted artifact. Bridges deliver it only to
// participants whose resolved preferred language matches.
func (d *Distributor) ArtifactReady(ctx context.Context, conversationID string, a domain.TranslationArtifact) error {
	return d.publish(ctx, Event{
		Type:              EventTranslation,
		ConversationID:    conversationID,
		MessageID:         a.MessageID,
		TargetLanguage:    a.TargetLanguage,
		TranslatedContent: a.TranslatedContent,
		TranslationModel:  a.TranslationModel,
		ConfidenceScore:   a.ConfidenceScore,
	})
}

// TranslationFailed marks one language as explicitly unavailable for the
// message. Clients render "could not translate" instead of silently showing
// the original.
func (d *Distributor) TranslationFailed(ctx context.Context, conversationID, messageID, targetLanguage, reason string) error {
	return d.publish(ctx, Event{
		Type:           EventTranslationFailed,
		ConversationID: conversationID,
		MessageID:      messageID,
		TargetLanguage: targetLanguage,
		Reason:         reason,
	})
}

// TranslationsComplete signals that no further variants will arrive for the
// message; with an empty required set it fires immediately.
func (d *Distributor) TranslationsComplete(ctx context.Context, conversationID, messageID string) error {
	return d.publish(ctx, Event{
		Type:           EventTranslationsComplete,
		ConversationID: conversationID,
		MessageID:      messageID,
	})
}
