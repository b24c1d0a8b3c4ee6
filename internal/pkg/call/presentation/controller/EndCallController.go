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

// EndCallController settles a call as ended. Either side may call it, and
// repeating it is harmless.
type EndCallController struct {
	UC  usecase.EndCallUseCase
	Hub *realtime.Hub
}

func NewEndCallController(pool *pgxpool.Pool, hub *realtime.Hub) *EndCallController {
	return &EndCallController{
		UC:  usecase.EndCallUseCase{Repo: adapter.NewPgCallRepository(pool)},
		Hub: hub,
	}
}

func (h *EndCallController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req callActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, failure(err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		rec, err := h.UC.Execute(ctx, usecase.EndCallInput{CallID: req.CallID})
		switch {
		case errors.Is(err, repoport.ErrCallNotFound):
			c.JSON(http.StatusNotFound, failure("call not found"))
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, failure(err.Error()))
			return
		}

		broadcastCall(h.Hub, realtime.EventUpdate, *rec)

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
