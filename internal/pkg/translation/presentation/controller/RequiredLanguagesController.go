package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jcnm/meeshy/internal/pkg/translation/application/usecase"
	"github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/adapter"
	"github.com/jcnm/meeshy/internal/pkg/translation/resolver"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RequiredLanguagesController answers "which languages would a message in
// this source language fan out to right now" (one controller per endpoint)
type RequiredLanguagesController struct {
	UC *usecase.GetRequiredLanguagesUseCase
}

func NewRequiredLanguagesController(pool *pgxpool.Pool, res *resolver.Resolver) *RequiredLanguagesController {
	members := adapter.NewPgMembershipProvider(pool)
	return &RequiredLanguagesController{UC: usecase.NewGetRequiredLanguagesUseCase(members, res)}
}

func (h *RequiredLanguagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}
		sourceLanguage := c.Query("source_language")
		if sourceLanguage == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "source_language is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		langs, err := h.UC.Execute(ctx, usecase.GetRequiredLanguagesInput{
			ConversationID: conversationID,
			SourceLanguage: sourceLanguage,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		if langs == nil {
			langs = []string{}
		}

		c.JSON(http.StatusOK, gin.H{
			"conversation_id":    conversationID,
			"source_language":    sourceLanguage,
			"required_languages": langs,
		})
	}
}
