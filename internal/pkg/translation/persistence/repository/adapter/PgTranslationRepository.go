package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
)

type PgTranslationRepository struct {
	pool *pgxpool.Pool
}

func NewPgTranslationRepository(pool *pgxpool.Pool) *PgTranslationRepository {
	return &PgTranslationRepository{pool: pool}
}

func (r *PgTranslationRepository) SaveMessage(ctx context.Context, m domain.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgTranslationRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO msg.message (conversation_id, sender_id, content, original_language, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5)
		RETURNING id::text
	`, m.ConversationID, m.SenderID, m.Content, m.OriginalLanguage, m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgTranslationRepository) GetMessage(ctx context.Context, messageID string) (*domain.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgTranslationRepository: nil pool")
	}
	var m domain.Message
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, content, original_language, created_at, is_edited, is_deleted
		FROM msg.message
		WHERE id = $1::uuid
	`, messageID).Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.OriginalLanguage, &m.CreatedAt, &m.IsEdited, &m.IsDeleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, err
	}
	return &m, nil
}

// InsertArtifact performs the conditional insert. ON CONFLICT DO NOTHING
// means a racing duplicate trigger silently loses; in that case the existing
// row is read back and returned with inserted=false. Exactly one persisted
// row can ever exist per (message, target language).
func (r *PgTranslationRepository) InsertArtifact(ctx context.Context, a domain.TranslationArtifact) (domain.TranslationArtifact, bool, error) {
	if r == nil || r.pool == nil {
		return domain.TranslationArtifact{}, false, errors.New("PgTranslationRepository: nil pool")
	}

	var id string
	var createdAt = a.CreatedAt
	err := r.pool.QueryRow(ctx, `
		INSERT INTO msg.translation_artifact (
			message_id, source_language, target_language, translated_content,
			translation_model, cache_key, confidence_score
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (message_id, target_language) DO NOTHING
		RETURNING id::text, created_at
	`, a.MessageID, a.SourceLanguage, a.TargetLanguage, a.TranslatedContent,
		a.TranslationModel, a.CacheKey, a.ConfidenceScore).Scan(&id, &createdAt)

	if err == nil {
		a.ID = id
		a.CreatedAt = createdAt
		return a, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.TranslationArtifact{}, false, err
	}

	// Conflict: the winner's row is authoritative.
	existing, err := r.getArtifact(ctx, a.MessageID, a.TargetLanguage)
	if err != nil {
		return domain.TranslationArtifact{}, false, err
	}
	return *existing, false, nil
}

func (r *PgTranslationRepository) getArtifact(ctx context.Context, messageID, targetLanguage string) (*domain.TranslationArtifact, error) {
	var a domain.TranslationArtifact
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, message_id::text, source_language, target_language,
		       translated_content, translation_model, cache_key, confidence_score, created_at
		FROM msg.translation_artifact
		WHERE message_id = $1::uuid AND target_language = $2
	`, messageID, targetLanguage).Scan(&a.ID, &a.MessageID, &a.SourceLanguage, &a.TargetLanguage,
		&a.TranslatedContent, &a.TranslationModel, &a.CacheKey, &a.ConfidenceScore, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrArtifactNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PgTranslationRepository) GetArtifactsByMessage(ctx context.Context, messageID string) ([]domain.TranslationArtifact, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgTranslationRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, message_id::text, source_language, target_language,
		       translated_content, translation_model, cache_key, confidence_score, created_at
		FROM msg.translation_artifact
		WHERE message_id = $1::uuid
		ORDER BY target_language
	`, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artifacts []domain.TranslationArtifact
	for rows.Next() {
		var a domain.TranslationArtifact
		if err := rows.Scan(&a.ID, &a.MessageID, &a.SourceLanguage, &a.TargetLanguage,
			&a.TranslatedContent, &a.TranslationModel, &a.CacheKey, &a.ConfidenceScore, &a.CreatedAt); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return artifacts, nil
}

// DeleteArtifact is the explicit force-replace path: clearing the old row is
// the only way a (message, language) pair ever gets a new artifact.
func (r *PgTranslationRepository) DeleteArtifact(ctx context.Context, messageID string, targetLanguage string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgTranslationRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		DELETE FROM msg.translation_artifact
		WHERE message_id = $1::uuid AND target_language = $2
	`, messageID, targetLanguage)
	return err
}

func (r *PgTranslationRepository) IsParticipant(ctx context.Context, conversationID string, participantID string) (bool, error) {
	if r == nil || r.pool == nil {
		return false, errors.New("PgTranslationRepository: nil pool")
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM msg.participant
			WHERE conversation_id = $1::uuid AND participant_id = $2::uuid AND is_active
		)
	`, conversationID, participantID).Scan(&exists)
	return exists, err
}
