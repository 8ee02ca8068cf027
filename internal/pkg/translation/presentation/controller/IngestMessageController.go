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

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IngestMessageController handles the message ingestion endpoint only (one controller per endpoint)
type IngestMessageController struct {
	UC *usecase.IngestMessageUseCase
}

func NewIngestMessageController(pool *pgxpool.Pool, queue qport.Client, dist *distribution.Distributor) *IngestMessageController {
	repo := adapter.NewPgTranslationRepository(pool)
	return &IngestMessageController{UC: usecase.NewIngestMessageUseCase(repo, queue, dist)}
}

// ingestMessageRequest is the DTO for the HTTP request body
type ingestMessageRequest struct {
	SenderID         string `json:"sender_id" binding:"required"`
	Content          string `json:"content" binding:"required"`
	OriginalLanguage string `json:"original_language" binding:"required"`
}

func (h *IngestMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var req ingestMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.IngestMessageInput{
			ConversationID:   conversationID,
			SenderID:         req.SenderID,
			Content:          req.Content,
			OriginalLanguage: req.OriginalLanguage,
		})
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotParticipant):
				c.JSON(http.StatusForbidden, gin.H{"error": "sender is not a participant in this conversation"})
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			case errors.Is(err, usecase.ErrQueue):
				// The message is stored and visible; only fan-out dispatch failed.
				c.JSON(http.StatusAccepted, gin.H{
					"status":     "stored_fanout_pending",
					"message_id": msg.ID,
				})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":            "queued",
			"message_id":        msg.ID,
			"conversation_id":   msg.ConversationID,
			"original_language": msg.OriginalLanguage,
			"created_at":        msg.CreatedAt,
		})
	}
}
