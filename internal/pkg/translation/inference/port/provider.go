package port

import (
	"context"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
)

// Request is one translation call to the inference capability.
type Request struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
	Tier           domain.ModelTier
}

// Result is the canonical internal shape every provider response is
// normalized into at the adapter boundary. Nothing downstream ever branches
// on upstream payload wrappers.
type Result struct {
	Text       string
	Confidence *float64
	ModelUsed  string
}

// Provider is the black-box translation capability: text in one language
// goes in, translated text plus confidence and model id come out.
// Implementations must honor ctx cancellation; a slow call is the caller's
// timeout to enforce.
type Provider interface {
	Translate(ctx context.Context, req Request) (Result, error)
}
