package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pranishuprety/Respondrr/internal/infrastructure/realtime"
	"github.com/pranishuprety/Respondrr/internal/pkg/call/application/usecase"
	hostport "github.com/pranishuprety/Respondrr/internal/pkg/call/host/port"
	"github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/adapter"
	repoport "github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/port"
)

// AcceptCallController settles a ringing call in the callee's favor. When
// the record already moved on, it answers 409 with the current status so
// the client can adopt the truth instead of joining a dead room.
type AcceptCallController struct {
	UC  usecase.AcceptCallUseCase
	Hub *realtime.Hub
}

func NewAcceptCallController(pool *pgxpool.Pool, rooms hostport.RoomProvider, hub *realtime.Hub) *AcceptCallController {
	return &AcceptCallController{
		UC:  usecase.AcceptCallUseCase{Repo: adapter.NewPgCallRepository(pool), Rooms: rooms},
		Hub: hub,
	}
}

type acceptCallRequest struct {
	CallID     string `json:"call_id" binding:"required"`
	AcceptedBy string `json:"accepted_by" binding:"required"`
}

func (h *AcceptCallController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req acceptCallRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, failure(err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.AcceptCallInput{CallID: req.CallID, AcceptedBy: req.AcceptedBy})
		switch {
		case errors.Is(err, repoport.ErrCallNotFound):
			c.JSON(http.StatusNotFound, failure("call not found"))
			return
		case errors.Is(err, repoport.ErrConflict):
			body := failure("call is no longer ringing")
			if out != nil && out.Call != nil {
				body["status"] = string(out.Call.Status)
			}
			c.JSON(http.StatusConflict, body)
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, failure(err.Error()))
			return
		}

		broadcastCall(h.Hub, realtime.EventUpdate, *out.Call)

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"token":    out.Token,
			"room_url": out.Call.RoomURL,
		})
	}
}
