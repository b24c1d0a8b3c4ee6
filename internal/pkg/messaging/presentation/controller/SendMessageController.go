package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	queueport "github.com/pranishuprety/Respondrr/internal/infrastructure/queue/port"
	"github.com/pranishuprety/Respondrr/internal/infrastructure/realtime"
	"github.com/pranishuprety/Respondrr/internal/pkg/messaging/application/task"
	"github.com/pranishuprety/Respondrr/internal/pkg/messaging/application/usecase"
	messaging "github.com/pranishuprety/Respondrr/internal/pkg/messaging/domain"
	"github.com/pranishuprety/Respondrr/internal/pkg/messaging/persistence/repository/adapter"
	repository "github.com/pranishuprety/Respondrr/internal/pkg/messaging/persistence/repository/port"
)

// SendMessageController persists a message row, fans the insert event out to
// watchers (the sender's other tabs included) and enqueues the watermark
// touch. One controller per endpoint.
type SendMessageController struct {
	UC  *usecase.SendMessageUseCase
	Hub *realtime.Hub
	Q   queueport.Client // optional; watermark update is skipped without it
}

func NewSendMessageController(pool *pgxpool.Pool, hub *realtime.Hub, client queueport.Client) *SendMessageController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &SendMessageController{UC: usecase.NewSendMessageUseCase(repo), Hub: hub, Q: client}
}

type sendMessageRequest struct {
	SenderID string  `json:"sender_id" binding:"required"`
	Body     *string `json:"body"`
	MsgType  *string `json:"msg_type"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		msgType := messaging.MessageTypeText
		if req.MsgType != nil {
			msgType = messaging.MessageType(*req.MsgType)
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			SenderID:       req.SenderID,
			Body:           req.Body,
			MsgType:        msgType,
		})
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, usecase.ErrPersistence):
				status = http.StatusInternalServerError
			case errors.Is(err, usecase.ErrNotParticipant):
				status = http.StatusForbidden
			case errors.Is(err, repository.ErrConversationNotFound):
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		h.broadcast(*msg)
		h.enqueueTouch(ctx, *msg)

		c.JSON(http.StatusCreated, toMessagePayload(*msg))
	}
}

func (h *SendMessageController) broadcast(msg messaging.Message) {
	if h.Hub == nil {
		return
	}
	ev, err := realtime.NewEvent(realtime.TableMessages, realtime.EventInsert, msg.ConversationID, toMessagePayload(msg))
	if err != nil {
		return
	}
	if payload, err := realtime.EncodeEventFrame(ev); err == nil {
		h.Hub.Broadcast(msg.ConversationID, payload)
	}
}

func (h *SendMessageController) enqueueTouch(ctx context.Context, msg messaging.Message) {
	if h.Q == nil {
		return
	}
	payload, err := json.Marshal(task.TouchConversationPayload{
		ConversationID: msg.ConversationID,
		At:             msg.CreatedAt,
	})
	if err != nil {
		return
	}
	_, _ = h.Q.Enqueue(ctx, queueport.Task{Type: task.TouchConversationTaskType, Payload: payload},
		queueport.EnqueueOption{Queue: "messaging", MaxRetry: 10})
}
