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
	"github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/adapter"
	repoport "github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/port"
)

// RejectCallController settles a ringing call as declined.
type RejectCallController struct {
	UC  usecase.RejectCallUseCase
	Hub *realtime.Hub
}

func NewRejectCallController(pool *pgxpool.Pool, hub *realtime.Hub) *RejectCallController {
	return &RejectCallController{
		UC:  usecase.RejectCallUseCase{Repo: adapter.NewPgCallRepository(pool)},
		Hub: hub,
	}
}

type callActionRequest struct {
	CallID string `json:"call_id" binding:"required"`
}

func (h *RejectCallController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req callActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, failure(err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		rec, err := h.UC.Execute(ctx, usecase.RejectCallInput{CallID: req.CallID})
		switch {
		case errors.Is(err, repoport.ErrCallNotFound):
			c.JSON(http.StatusNotFound, failure("call not found"))
			return
		case errors.Is(err, repoport.ErrConflict):
			body := failure("call already progressed")
			if rec != nil {
				body["status"] = string(rec.Status)
			}
			c.JSON(http.StatusConflict, body)
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, failure(err.Error()))
			return
		}

		broadcastCall(h.Hub, realtime.EventUpdate, *rec)

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
