package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	qport "github.com/jcnm/meeshy/internal/infrastructure/queue/port"
	"github.com/jcnm/meeshy/internal/infrastructure/realtime"
	domain "github.com/jcnm/meeshy/internal/pkg/translation/application/domain"
	"github.com/jcnm/meeshy/internal/pkg/translation/application/usecase"
	"github.com/jcnm/meeshy/internal/pkg/translation/distribution"
	repoAdapter "github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/adapter"
	repository "github.com/jcnm/meeshy/internal/pkg/translation/persistence/repository/port"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TranslationSocketController handles the websocket endpoint for realtime
// conversation traffic. Sessions join conversation rooms; originals,
// translated variants, and terminal markers arrive through the distribution
// bridge, so the controller itself only ingests and acks.
type TranslationSocketController struct {
	router          *realtime.Router
	repo            repository.TranslationRepository
	ingestUC        *usecase.IngestMessageUseCase
	inflightTimeout time.Duration
}

func NewTranslationSocketController(pool *pgxpool.Pool, router *realtime.Router, queue qport.Client, dist *distribution.Distributor) *TranslationSocketController {
	repo := repoAdapter.NewPgTranslationRepository(pool)
	return &TranslationSocketController{
		router:          router,
		repo:            repo,
		ingestUC:        usecase.NewIngestMessageUseCase(repo, queue, dist),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

type inboundFrame struct {
	Type             string `json:"type"`
	ConversationID   string `json:"conversation_id,omitempty"`
	Content          string `json:"content,omitempty"`
	OriginalLanguage string `json:"original_language,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	MessageID      string `json:"message_id,omitempty"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades HTTP connections to websocket and processes frames until the client disconnects.
func (ctl *TranslationSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.router.Attach(conn)
		defer func() {
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		handshakeAck := ackFrame{Type: "connected"}
		if payload, err := json.Marshal(handshakeAck); err == nil {
			_ = conn.Send(payload)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "join":
				ctl.handleJoin(c, conn, frame)
			case "leave":
				ctl.handleLeave(conn, frame)
			case "message":
				ctl.handleMessage(c, conn, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *TranslationSocketController) handleJoin(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	ok, err := ctl.repo.IsParticipant(ctx, frame.ConversationID, conn.UserID)
	if err != nil {
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
		return
	}
	if !ok {
		ctl.replyError(conn, "forbidden", "user is not a participant in this conversation")
		return
	}

	ctl.router.Join(frame.ConversationID, conn)

	ack := ackFrame{Type: "joined", ConversationID: frame.ConversationID}
	if payload, err := json.Marshal(ack); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *TranslationSocketController) handleLeave(conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}
	ctl.router.Leave(frame.ConversationID, conn)

	ack := ackFrame{Type: "left", ConversationID: frame.ConversationID}
	if payload, err := json.Marshal(ack); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *TranslationSocketController) handleMessage(c *gin.Context, conn *realtime.Connection, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	msg, err := ctl.ingestUC.Execute(ctx, usecase.IngestMessageInput{
		ConversationID:   frame.ConversationID,
		SenderID:         conn.UserID,
		Content:          frame.Content,
		OriginalLanguage: frame.OriginalLanguage,
	})
	if err != nil && !errors.Is(err, usecase.ErrQueue) {
		ctl.handleUseCaseError(conn, err)
		return
	}

	// The original reaches the room through the bus bridge; the sender only
	// needs the ack with the assigned id.
	ack := ackFrame{Type: "accepted", ConversationID: frame.ConversationID, MessageID: msg.ID}
	if payload, err := json.Marshal(ack); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *TranslationSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, domain.ErrNotParticipant):
		ctl.replyError(conn, "forbidden", "user is not a participant in this conversation")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *TranslationSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := errorFrame{
		Type:  "error",
		Code:  code,
		Error: message,
	}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}
