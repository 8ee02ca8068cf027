package http

import (
	qport "github.com/jcnm/meeshy/internal/infrastructure/queue/port"
	"github.com/jcnm/meeshy/internal/infrastructure/realtime"
	"github.com/jcnm/meeshy/internal/pkg/translation/distribution"
	"github.com/jcnm/meeshy/internal/pkg/translation/presentation/controller"
	"github.com/jcnm/meeshy/internal/pkg/translation/resolver"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes registers translation-related HTTP endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, client qport.Client, res *resolver.Resolver, dist *distribution.Distributor, router *realtime.Router) {
	ingestCtl := controller.NewIngestMessageController(pool, client, dist)
	artifactsCtl := controller.NewGetArtifactsController(pool)
	requiredCtl := controller.NewRequiredLanguagesController(pool, res)
	retranslateCtl := controller.NewRetranslateController(pool, res, client, dist)
	socketCtl := controller.NewTranslationSocketController(pool, router, client, dist)

	// POST /api/v1/conversation/:conversationId/messages -> ingest a message and fan out its translations
	g.POST("/conversation/:conversationId/messages", ingestCtl.Handle())

	// GET /api/v1/conversation/:conversationId/required-languages -> resolve the current target set
	g.GET("/conversation/:conversationId/required-languages", requiredCtl.Handle())

	// GET /api/v1/messages/:messageId/translations -> pull persisted artifacts
	g.GET("/messages/:messageId/translations", artifactsCtl.Handle())

	// POST /api/v1/messages/:messageId/translations/:lang/retranslate -> force-replace one artifact
	g.POST("/messages/:messageId/translations/:lang/retranslate", retranslateCtl.Handle())

	// GET /api/v1/ws -> websocket endpoint for realtime conversation traffic
	g.GET("/ws", socketCtl.Handle())
}
