package translation

import (
	"errors"
	"strings"
	"time"
)

// Message is an immutable log entry in a conversation. The translation
// engine never mutates it; translated variants are attached as separate
// artifacts keyed by (message, target language).
type Message struct {
	ID               string    `db:"id"`
	ConversationID   string    `db:"conversation_id"`
	SenderID         string    `db:"sender_id"`
	Content          string    `db:"content"`
	OriginalLanguage string    `db:"original_language"`
	CreatedAt        time.Time `db:"created_at"`
	IsEdited         bool      `db:"is_edited"`
	IsDeleted        bool      `db:"is_deleted"`
}

func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.SenderID == "" {
		return nil, errors.New("conversation_id and sender_id are required")
	}

	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" {
		return nil, ErrEmptyMessage
	}

	m.OriginalLanguage = NormalizeLanguageCode(m.OriginalLanguage)
	if m.OriginalLanguage == "" {
		return nil, errors.New("original_language is required")
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return &m, nil
}

// NormalizeLanguageCode canonicalizes a BCP-47-ish code for set membership:
// trimmed and lowercased, so "FR" and "fr" name the same target.
func NormalizeLanguageCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
