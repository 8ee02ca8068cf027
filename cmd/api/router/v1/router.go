package v1

import (
	qport "github.com/jcnm/meeshy/internal/infrastructure/queue/port"
	"github.com/jcnm/meeshy/internal/infrastructure/realtime"
	"github.com/jcnm/meeshy/internal/pkg/translation/distribution"
	httpHandler "github.com/jcnm/meeshy/internal/pkg/translation/presentation/http"
	"github.com/jcnm/meeshy/internal/pkg/translation/resolver"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, client qport.Client, res *resolver.Resolver, dist *distribution.Distributor, rt *realtime.Router) {
	v1 := r.Group("/api/v1")
	// Pass the shared infrastructure down to the HTTP layer
	httpHandler.RegisterRoutes(v1, pool, client, res, dist, rt)
}
