package repository

import (
	"context"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
)

// MembershipProvider is the membership/profile collaborator: it supplies the
// active-participant snapshot language requirements are derived from. The
// snapshot is taken once per dispatch; membership changes mid-translation do
// not retroactively affect an in-flight fan-out.
type MembershipProvider interface {
	GetActiveParticipants(ctx context.Context, conversationID string) ([]domain.ParticipantLanguageProfile, error)
}
