package distribution

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	pubsubadapter "github.com/jcnm/meeshy/internal/infrastructure/pubsub/adapter"
	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
	"github.com/jcnm/meeshy/internal/pkg/translation/resolver"
)

// ---------------------------------------------------------------------------
// fakes
// ---------------------------------------------------------------------------

type delivery struct {
	kind    string // "broadcast" or "notify"
	target  string // conversation for broadcast, user for notify
	payload []byte
}

// recordingNotifier captures session deliveries and signals each one so
// tests can wait without sleeping.
type recordingNotifier struct {
	mu         sync.Mutex
	deliveries []delivery
	signal     chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{signal: make(chan struct{}, 16)}
}

func (n *recordingNotifier) Broadcast(conversationID string, payload []byte, excludeUserID string) int {
	n.record(delivery{kind: "broadcast", target: conversationID, payload: payload})
	return 1
}

func (n *recordingNotifier) NotifyUser(userID string, payload []byte) bool {
	n.record(delivery{kind: "notify", target: userID, payload: payload})
	return true
}

func (n *recordingNotifier) record(d delivery) {
	n.mu.Lock()
	n.deliveries = append(n.deliveries, d)
	n.mu.Unlock()
	n.signal <- struct{}{}
}

func (n *recordingNotifier) wait(t *testing.T, count int) []delivery {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for i := 0; i < count; i++ {
		select {
		case <-n.signal:
		case <-deadline:
			t.Fatalf("timed out waiting for delivery %d of %d", i+1, count)
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]delivery, len(n.deliveries))
	copy(out, n.deliveries)
	return out
}

func (n *recordingNotifier) assertQuiet(t *testing.T) {
	t.Helper()
	select {
	case <-n.signal:
		t.Fatal("unexpected delivery")
	case <-time.After(100 * time.Millisecond):
	}
}

type staticMembers struct {
	profiles []domain.ParticipantLanguageProfile
}

func (m *staticMembers) GetActiveParticipants(ctx context.Context, conversationID string) ([]domain.ParticipantLanguageProfile, error) {
	return m.profiles, nil
}

func systemProfile(id, lang string) domain.ParticipantLanguageProfile {
	return domain.ParticipantLanguageProfile{
		ParticipantID:             id,
		IsActive:                  true,
		SystemLanguage:            lang,
		TranslateToSystemLanguage: true,
	}
}

func startBridge(t *testing.T, members *staticMembers) (*pubsubadapter.MemoryPubSub, *recordingNotifier, *Distributor) {
	t.Helper()
	bus := pubsubadapter.NewMemoryPubSub()
	notifier := newRecordingNotifier()
	bridge := NewBridge(bus, notifier, members, resolver.New("en"))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = bridge.Run(ctx) }()
	// Let the subscription attach before publishing.
	time.Sleep(20 * time.Millisecond)

	return bus, notifier, NewDistributor(bus)
}

// ---------------------------------------------------------------------------
// tests
// ---------------------------------------------------------------------------

func TestBridge_BroadcastsOriginalToRoom(t *testing.T) {
	members := &staticMembers{profiles: []domain.ParticipantLanguageProfile{
		systemProfile("u-fr", "fr"),
		systemProfile("u-en", "en"),
	}}
	_, notifier, dist := startBridge(t, members)

	msg := domain.Message{
		ID:               "m1",
		ConversationID:   "conv-1",
		SenderID:         "u-fr",
		Content:          "Bonjour",
		OriginalLanguage: "fr",
	}
	if err := dist.MessageCreated(context.Background(), msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got := notifier.wait(t, 1)
	if got[0].kind != "broadcast" || got[0].target != "conv-1" {
		t.Fatalf("delivery = %+v, want room broadcast", got[0])
	}
	var ev Event
	if err := json.Unmarshal(got[0].payload, &ev); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ev.Type != EventMessage || ev.OriginalLanguage != "fr" {
		t.Errorf("event = %+v, want original tagged with its language", ev)
	}
}

func TestBridge_DeliversTranslationByPreferredLanguage(t *testing.T) {
	members := &staticMembers{profiles: []domain.ParticipantLanguageProfile{
		systemProfile("u-fr", "fr"),
		systemProfile("u-en-1", "en"),
		systemProfile("u-en-2", "en"),
	}}
	_, notifier, dist := startBridge(t, members)

	artifact := domain.TranslationArtifact{
		MessageID:         "m1",
		SourceLanguage:    "fr",
		TargetLanguage:    "en",
		TranslatedContent: "Hello",
	}
	if err := dist.ArtifactReady(context.Background(), "conv-1", artifact); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got := notifier.wait(t, 2)
	users := map[string]bool{}
	for _, d := range got {
		if d.kind != "notify" {
			t.Fatalf("delivery = %+v, want targeted notify", d)
		}
		users[d.target] = true
	}
	if !users["u-en-1"] || !users["u-en-2"] || users["u-fr"] {
		t.Errorf("delivered to %v, want both en readers and not the fr reader", users)
	}
	notifier.assertQuiet(t)
}

func TestBridge_RespectsCustomDestination(t *testing.T) {
	custom := systemProfile("u-custom", "fr")
	custom.AutoTranslateEnabled = true
	custom.CustomDestinationLanguage = "es"
	custom.UseCustomDestination = true
	members := &staticMembers{profiles: []domain.ParticipantLanguageProfile{custom}}
	_, notifier, dist := startBridge(t, members)

	if err := dist.ArtifactReady(context.Background(), "conv-1", domain.TranslationArtifact{
		MessageID: "m1", SourceLanguage: "en", TargetLanguage: "es", TranslatedContent: "Hola",
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	got := notifier.wait(t, 1)
	if got[0].target != "u-custom" {
		t.Errorf("target = %q, want the custom-destination reader", got[0].target)
	}

	// The same participant's system-language variant is not for them.
	if err := dist.ArtifactReady(context.Background(), "conv-1", domain.TranslationArtifact{
		MessageID: "m1", SourceLanguage: "en", TargetLanguage: "fr", TranslatedContent: "Bonjour",
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	notifier.assertQuiet(t)
}

func TestBridge_BroadcastsTerminalMarkers(t *testing.T) {
	members := &staticMembers{profiles: []domain.ParticipantLanguageProfile{systemProfile("u-en", "en")}}
	_, notifier, dist := startBridge(t, members)

	if err := dist.TranslationFailed(context.Background(), "conv-1", "m1", "de", "translation unavailable"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := dist.TranslationsComplete(context.Background(), "conv-1", "m1"); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got := notifier.wait(t, 2)
	var types []string
	for _, d := range got {
		var ev Event
		if err := json.Unmarshal(d.payload, &ev); err != nil {
			t.Fatalf("payload: %v", err)
		}
		if d.kind != "broadcast" {
			t.Fatalf("delivery = %+v, want room broadcast", d)
		}
		types = append(types, ev.Type)
	}
	if types[0] != EventTranslationFailed || types[1] != EventTranslationsComplete {
		t.Errorf("types = %v", types)
	}
}

func TestBridge_DropsMalformedEvents(t *testing.T) {
	members := &staticMembers{profiles: []domain.ParticipantLanguageProfile{systemProfile("u-en", "en")}}
	bus, notifier, dist := startBridge(t, members)

	if err := bus.Publish(context.Background(), EventsChannel, []byte("not json")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	notifier.assertQuiet(t)

	// The bridge keeps consuming after a bad frame.
	if err := dist.TranslationsComplete(context.Background(), "conv-1", "m1"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	notifier.wait(t, 1)
}
