package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	qport "github.com/jcnm/meeshy/internal/infrastructure/queue/port"
	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
	"github.com/jcnm/meeshy/internal/pkg/translation/application/usecase"
	"github.com/jcnm/meeshy/internal/pkg/translation/distribution"
	"github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/adapter"
	"github.com/jcnm/meeshy/internal/pkg/translation/resolver"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RetranslateController handles the force-retranslation endpoint (one controller per endpoint)
type RetranslateController struct {
	UC *usecase.RetranslateUseCase
}

func NewRetranslateController(pool *pgxpool.Pool, res *resolver.Resolver, queue qport.Client, dist *distribution.Distributor) *RetranslateController {
	repo := adapter.NewPgTranslationRepository(pool)
	members := adapter.NewPgMembershipProvider(pool)
	dispatch := usecase.NewTranslateMessageUseCase(repo, members, res, queue, dist)
	return &RetranslateController{UC: usecase.NewRetranslateUseCase(repo, dispatch)}
}

func (h *RetranslateController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		messageID := c.Param("messageId")
		lang := c.Param("lang")
		if messageID == "" || lang == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "messageId and lang are required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		err := h.UC.Execute(ctx, usecase.RetranslateInput{MessageID: messageID, TargetLanguage: lang})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrMessageNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			default:
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to dispatch retranslation"})
			}
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":          "queued",
			"message_id":      messageID,
			"target_language": lang,
		})
	}
}
