package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/pranishuprety/Respondrr/internal/infrastructure/cache/port"
	"github.com/pranishuprety/Respondrr/internal/pkg/messaging/application/usecase"
	"github.com/pranishuprety/Respondrr/internal/pkg/messaging/persistence/repository/adapter"
)

// EnsureConversationController handles the lazy get-or-create endpoint for
// the (patient, doctor) thread. One controller per endpoint.
type EnsureConversationController struct {
	UC *usecase.EnsureConversationUseCase
}

func NewEnsureConversationController(pool *pgxpool.Pool, cache cacheport.Cache) *EnsureConversationController {
	repo := adapter.NewPgMessagingRepository(pool)
	return &EnsureConversationController{UC: usecase.NewEnsureConversationUseCase(repo, cache)}
}

type ensureConversationRequest struct {
	PatientID string `json:"patient_id" binding:"required"`
	DoctorID  string `json:"doctor_id" binding:"required"`
}

func (h *EnsureConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ensureConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.EnsureConversationInput{
			PatientID: req.PatientID,
			DoctorID:  req.DoctorID,
		})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":              conv.ID,
			"patient_id":      conv.PatientID,
			"doctor_id":       conv.DoctorID,
			"created_at":      conv.CreatedAt,
			"last_message_at": conv.LastMessageAt,
		})
	}
}
