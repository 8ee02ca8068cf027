package distribution

import (
	"context"
	"encoding/json"
	"log"

	pubsub "github.com/jcnm/meeshy/internal/infrastructure/pubsub/port"
	repository "github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/port"
	"github.com/jcnm/meeshy/internal/pkg/translation/resolver"
)

// SessionNotifier is the slice of the realtime router the bridge needs.
// Implemented by realtime.Router.
type SessionNotifier interface {
	Broadcast(conversationID string, payload []byte, excludeUserID string) int
	NotifyUser(userID string, payload []byte) bool
}

// Bridge consumes bus events on one node and pushes them into that node's
// websocket sessions. Originals and terminal markers go to the whole room;
// translations go only to participants whose resolved preferred language
// matches the artifact's target language. An unreachable session is not
// retried: the artifact is already persisted and the pull path covers
// reconnects.
type Bridge struct {
	sub      pubsub.Subscriber
	sessions SessionNotifier
	members  repository.MembershipProvider
	resolver *resolver.Resolver
}

func NewBridge(sub pubsub.Subscriber, sessions SessionNotifier, members repository.MembershipProvider, res *resolver.Resolver) *Bridge {
	return &Bridge{sub: sub, sessions: sessions, members: members, resolver: res}
}

// Run blocks consuming events until ctx is canceled or the subscription
// closes.
func (b *Bridge) Run(ctx context.Context) error {
	events, err := b.sub.Subscribe(ctx, EventsChannel)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-events:
			if !ok {
				return nil
			}
			b.dispatch(ctx, payload)
		}
	}
}

func (b *Bridge) dispatch(ctx context.Context, payload []byte) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		log.Printf("distribution bridge: malformed event dropped: %v", err)
		return
	}

	switch ev.Type {
	case EventTranslation:
		b.deliverTranslation(ctx, ev, payload)
	case EventMessage, EventTranslationFailed, EventTranslationsComplete:
		b.sessions.Broadcast(ev.ConversationID, payload, "")
	default:
		log.Printf("distribution bridge: unknown event type %q dropped", ev.Type)
	}
}

func (b *Bridge) deliverTranslation(ctx context.Context, ev Event, payload []byte) {
	profiles, err := b.members.GetActiveParticipants(ctx, ev.ConversationID)
	if err != nil {
		// Session-level failure only; the artifact stays persisted and is
		// fetched on reconnect.
		log.Printf("distribution bridge: participants for %s unavailable: %v", ev.ConversationID, err)
		return
	}
	for _, p := range profiles {
		if b.resolver.PreferredLanguage(p) != ev.TargetLanguage {
			continue
		}
		b.sessions.NotifyUser(p.ParticipantID, payload)
	}
}
