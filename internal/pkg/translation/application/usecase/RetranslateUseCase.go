package usecase

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
	repository "github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/port"
)

// RetranslateInput names the (message, language) pair to force-replace.
type RetranslateInput struct {
	MessageID      string
	TargetLanguage string
}

// RetranslateUseCase is the explicit force-replace path: the old artifact is
// deleted first, then a fresh cache-bypassing unit is dispatched. Without
// this path a new attempt for an existing pair is a conflict and the old row
// stays authoritative.
type RetranslateUseCase struct {
	Repo     repository.TranslationRepository
	Dispatch *TranslateMessageUseCase
}

func NewRetranslateUseCase(repo repository.TranslationRepository, dispatch *TranslateMessageUseCase) *RetranslateUseCase {
	return &RetranslateUseCase{Repo: repo, Dispatch: dispatch}
}

func (uc *RetranslateUseCase) Execute(ctx context.Context, in RetranslateInput) error {
	if in.MessageID == "" || in.TargetLanguage == "" {
		return fmt.Errorf("messageId and targetLanguage are required")
	}
	target := domain.NormalizeLanguageCode(in.TargetLanguage)

	if _, err := uc.Repo.GetMessage(ctx, in.MessageID); err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := uc.Repo.DeleteArtifact(ctx, in.MessageID, target); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return uc.Dispatch.EnqueueLanguage(ctx, in.MessageID, target, true)
}
