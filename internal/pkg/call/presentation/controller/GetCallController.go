package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/adapter"
	repoport "github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/port"
)

// GetCallController returns the current call record. Clients that lost a
// transition race fetch here and adopt whatever the store says.
type GetCallController struct {
	Repo repoport.CallRepository
}

func NewGetCallController(pool *pgxpool.Pool) *GetCallController {
	return &GetCallController{Repo: adapter.NewPgCallRepository(pool)}
}

func (h *GetCallController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		callID := c.Param("callId")
		if callID == "" {
			c.JSON(http.StatusBadRequest, failure("callId is required"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		rec, err := h.Repo.GetCall(ctx, callID)
		switch {
		case errors.Is(err, repoport.ErrCallNotFound):
			c.JSON(http.StatusNotFound, failure("call not found"))
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, failure(err.Error()))
			return
		}

		c.JSON(http.StatusOK, toCallPayload(*rec))
	}
}
