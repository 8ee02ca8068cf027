package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/jcnm/meeshy/internal/infrastructure/queue/port"
	"github.com/jcnm/meeshy/internal/pkg/translation/application/usecase"
	tcache "github.com/jcnm/meeshy/internal/pkg/translation/cache"
	"github.com/jcnm/meeshy/internal/pkg/translation/distribution"
	infport "github.com/jcnm/meeshy/internal/pkg/translation/inference/port"
	repoAdapter "github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/adapter"
	"github.com/jcnm/meeshy/internal/pkg/translation/resolver"
)

// Deps bundles what the translation task handlers need. Handlers construct
// their use cases per execution, mirroring how HTTP controllers do.
type Deps struct {
	Pool        *pgxpool.Pool
	Cache       *tcache.TranslationCache
	Provider    infport.Provider
	Queue       qport.Client
	Distributor *distribution.Distributor
	Resolver    *resolver.Resolver
	UnitConfig  usecase.TranslateLanguageConfig
}

// RegisterTranslationTasks binds the fan-out and per-language handlers to
// the provided server.
func RegisterTranslationTasks(srv qport.Server, deps Deps) {
	srv.Register(usecase.FanOutMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p usecase.FanOutMessageTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		repo := repoAdapter.NewPgTranslationRepository(deps.Pool)
		members := repoAdapter.NewPgMembershipProvider(deps.Pool)
		uc := usecase.NewTranslateMessageUseCase(repo, members, deps.Resolver, deps.Queue, deps.Distributor)

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		_, err := uc.Execute(ctx, usecase.TranslateMessageInput{MessageID: p.MessageID})
		return err
	})

	srv.Register(usecase.TranslateLanguageTaskType, func(ctx context.Context, t qport.Task) error {
		var p usecase.TranslateLanguageTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			return err
		}

		repo := repoAdapter.NewPgTranslationRepository(deps.Pool)
		uc := usecase.NewTranslateLanguageUseCase(repo, deps.Cache, deps.Provider, deps.Distributor, deps.UnitConfig)

		// Budget covers one slow inference call plus its fallback.
		ctx, cancel := context.WithTimeout(ctx, 90*time.Second)
		defer cancel()
		_, err := uc.Execute(ctx, usecase.TranslateLanguageInput{
			MessageID:      p.MessageID,
			TargetLanguage: p.TargetLanguage,
			BypassCache:    p.BypassCache,
		})
		return err
	})
}
