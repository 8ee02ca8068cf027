package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
)

// PgMembershipProvider reads the participant language profiles owned by the
// membership collaborators. The engine only ever reads these rows.
type PgMembershipProvider struct {
	pool *pgxpool.Pool
}

func NewPgMembershipProvider(pool *pgxpool.Pool) *PgMembershipProvider {
	return &PgMembershipProvider{pool: pool}
}

func (r *PgMembershipProvider) GetActiveParticipants(ctx context.Context, conversationID string) ([]domain.ParticipantLanguageProfile, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMembershipProvider: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT conversation_id::text, participant_id::text, is_active,
		       system_language, COALESCE(regional_language, ''), COALESCE(custom_destination_language, ''),
		       auto_translate_enabled, translate_to_system_language, translate_to_regional, use_custom_destination
		FROM msg.participant
		WHERE conversation_id = $1::uuid AND is_active
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.ParticipantLanguageProfile
	for rows.Next() {
		var p domain.ParticipantLanguageProfile
		if err := rows.Scan(&p.ConversationID, &p.ParticipantID, &p.IsActive,
			&p.SystemLanguage, &p.RegionalLanguage, &p.CustomDestinationLanguage,
			&p.AutoTranslateEnabled, &p.TranslateToSystemLanguage, &p.TranslateToRegionalLanguage,
			&p.UseCustomDestination); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return profiles, nil
}
