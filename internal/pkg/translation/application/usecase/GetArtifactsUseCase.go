package usecase

import (
	"context"
	"fmt"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
	repository "github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/port"
)

// GetArtifactsInput wraps the message identifier to fetch its translations.
type GetArtifactsInput struct {
	MessageID string
}

// GetArtifactsUseCase is the pull path: participants who were disconnected
// while artifacts streamed fetch the full set from the persisted store on
// reconnect or history load.
type GetArtifactsUseCase struct {
	Repo repository.TranslationRepository
}

func NewGetArtifactsUseCase(repo repository.TranslationRepository) *GetArtifactsUseCase {
	return &GetArtifactsUseCase{Repo: repo}
}

func (uc *GetArtifactsUseCase) Execute(ctx context.Context, in GetArtifactsInput) ([]domain.TranslationArtifact, error) {
	if in.MessageID == "" {
		return nil, fmt.Errorf("messageId is required")
	}
	artifacts, err := uc.Repo.GetArtifactsByMessage(ctx, in.MessageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return artifacts, nil
}
