package usecase

import (
	"context"
	"fmt"

	repository "github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/port"
	"github.com/jcnm/meeshy/internal/pkg/translation/resolver"
)

// GetRequiredLanguagesInput carries the conversation and the hypothetical
// source language to resolve against.
type GetRequiredLanguagesInput struct {
	ConversationID string
	SourceLanguage string
}

// GetRequiredLanguagesUseCase exposes requirement resolution for diagnostics
// and testing against a live roster.
type GetRequiredLanguagesUseCase struct {
	Members  repository.MembershipProvider
	Resolver *resolver.Resolver
}

func NewGetRequiredLanguagesUseCase(members repository.MembershipProvider, res *resolver.Resolver) *GetRequiredLanguagesUseCase {
	return &GetRequiredLanguagesUseCase{Members: members, Resolver: res}
}

func (uc *GetRequiredLanguagesUseCase) Execute(ctx context.Context, in GetRequiredLanguagesInput) ([]string, error) {
	if in.ConversationID == "" || in.SourceLanguage == "" {
		return nil, fmt.Errorf("conversationId and sourceLanguage are required")
	}
	profiles, err := uc.Members.GetActiveParticipants(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return uc.Resolver.RequiredLanguages(profiles, in.SourceLanguage), nil
}
