package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jcnm/meeshy/internal/pkg/translation/application/usecase"
	"github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GetArtifactsController handles the translation pull endpoint (one controller per endpoint)
type GetArtifactsController struct {
	UC *usecase.GetArtifactsUseCase
}

func NewGetArtifactsController(pool *pgxpool.Pool) *GetArtifactsController {
	repo := adapter.NewPgTranslationRepository(pool)
	return &GetArtifactsController{UC: usecase.NewGetArtifactsUseCase(repo)}
}

func (h *GetArtifactsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		messageID := c.Param("messageId")
		if messageID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "messageId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		artifacts, err := h.UC.Execute(ctx, usecase.GetArtifactsInput{MessageID: messageID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		out := make([]gin.H, 0, len(artifacts))
		for _, a := range artifacts {
			out = append(out, gin.H{
				"id":                 a.ID,
				"message_id":         a.MessageID,
				"source_language":    a.SourceLanguage,
				"target_language":    a.TargetLanguage,
				"translated_content": a.TranslatedContent,
				"translation_model":  a.TranslationModel,
				"confidence_score":   a.ConfidenceScore,
				"created_at":         a.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"message_id":   messageID,
			"translations": out,
			"count":        len(out),
		})
	}
}
