package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pranishuprety/Respondrr/internal/infrastructure/realtime"
	"github.com/pranishuprety/Respondrr/internal/pkg/call/application/usecase"
	hostport "github.com/pranishuprety/Respondrr/internal/pkg/call/host/port"
	"github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/adapter"
)

// InitiateCallController provisions a room, rings the conversation and hands
// the initiator their meeting token. One controller per endpoint.
type InitiateCallController struct {
	UC  usecase.InitiateCallUseCase
	Hub *realtime.Hub
}

func NewInitiateCallController(pool *pgxpool.Pool, rooms hostport.RoomProvider, hub *realtime.Hub) *InitiateCallController {
	return &InitiateCallController{
		UC:  usecase.InitiateCallUseCase{Repo: adapter.NewPgCallRepository(pool), Rooms: rooms},
		Hub: hub,
	}
}

type initiateCallRequest struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	InitiatedBy    string `json:"initiated_by" binding:"required"`
}

func (h *InitiateCallController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req initiateCallRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, failure(err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.InitiateCallInput{
			ConversationID: req.ConversationID,
			InitiatedBy:    req.InitiatedBy,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, failure(err.Error()))
			return
		}

		broadcastCall(h.Hub, realtime.EventInsert, *out.Call)

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"call_id":   out.Call.ID,
			"room_name": out.Call.RoomName,
			"room_url":  out.Call.RoomURL,
			"token":     out.Token,
		})
	}
}
