package translation

import "errors"

// Domain-level errors for translation behaviors
var (
	ErrEmptyMessage     = errors.New("translation: empty message content")
	ErrNotParticipant   = errors.New("translation: sender is not a participant in the conversation")
	ErrMessageNotFound  = errors.New("translation: message not found")
	ErrArtifactNotFound = errors.New("translation: artifact not found")
)
