package usecase

import (
	"context"
	"fmt"
	"time"

	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
	infport "github.com/jcnm/meeshy/internal/pkg/translation/inference/port"
)

// AttemptState tracks one translation attempt through its lifecycle:
// pending -> primary-model -> fallback-model -> {done|failed}.
type AttemptState string

const (
	AttemptPending  AttemptState = "pending"
	AttemptPrimary  AttemptState = "primary-model"
	AttemptFallback AttemptState = "fallback-model"
	AttemptDone     AttemptState = "done"
	AttemptFailed   AttemptState = "failed"
)

// Attempt is the explicit retry-then-fallback machine around one inference
// call: the requested tier first, then exactly one retry on the next cheaper
// tier. Each call gets its own timeout; a timeout fails that call only.
type Attempt struct {
	Provider infport.Provider
	Timeout  time.Duration

	state AttemptState
}

func NewAttempt(provider infport.Provider, timeout time.Duration) *Attempt {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Attempt{Provider: provider, Timeout: timeout, state: AttemptPending}
}

func (a *Attempt) State() AttemptState { return a.state }

// Run drives the machine to a terminal state. On success it returns the
// result and the tier that actually produced it.
func (a *Attempt) Run(ctx context.Context, req infport.Request) (infport.Result, domain.ModelTier, error) {
	if a.state != AttemptPending {
		return infport.Result{}, "", fmt.Errorf("translation attempt already ran (state %s)", a.state)
	}

	a.state = AttemptPrimary
	res, primaryErr := a.call(ctx, req)
	if primaryErr == nil {
		a.state = AttemptDone
		return res, req.Tier, nil
	}

	fallbackTier, ok := req.Tier.Fallback()
	if !ok {
		a.state = AttemptFailed
		return infport.Result{}, "", fmt.Errorf("translate %s->%s on %s: %w",
			req.SourceLanguage, req.TargetLanguage, req.Tier, primaryErr)
	}

	a.state = AttemptFallback
	fallbackReq := req
	fallbackReq.Tier = fallbackTier
	res, fallbackErr := a.call(ctx, fallbackReq)
	if fallbackErr == nil {
		a.state = AttemptDone
		return res, fallbackTier, nil
	}

	a.state = AttemptFailed
	return infport.Result{}, "", fmt.Errorf("translate %s->%s failed on %s (%v) and fallback %s: %w",
		req.SourceLanguage, req.TargetLanguage, req.Tier, primaryErr, fallbackTier, fallbackErr)
}

func (a *Attempt) call(ctx context.Context, req infport.Request) (infport.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()
	return a.Provider.Translate(callCtx, req)
}
