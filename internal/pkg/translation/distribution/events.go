package distribution

import "time"

// EventsChannel is the pub/sub channel every node publishes realtime events
// on and every node's bridge consumes from.
const EventsChannel = "realtime:events"

// Event frame types.
const (
	EventMessage              = "message"
	EventTranslation          = "translation"
	EventTranslationFailed    = "translation_failed"
	EventTranslationsComplete = "translations_complete"
)

// Event is the wire frame carried over the bus and delivered to websocket
// sessions as-is. One struct with a type tag keeps bridge dispatch trivial.
type Event struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id,omitempty"`

	// EventMessage fields
	SenderID         string    `json:"sender_id,omitempty"`
	Content          string    `json:"content,omitempty"`
	OriginalLanguage string    `json:"original_language,omitempty"`
	CreatedAt        time.Time `json:"created_at,omitempty"`

	// EventTranslation / EventTranslationFailed fields
	TargetLanguage    string   `json:"target_language,omitempty"`
	TranslatedContent string   `json:"translated_content,omitempty"`
	TranslationModel  string   `json:"translation_model,omitempty"`
	ConfidenceScore   *float64 `json:"confidence_score,omitempty"`
	Reason            string   `json:"reason,omitempty"`
}
