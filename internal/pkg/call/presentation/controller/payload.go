package controller

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pranishuprety/Respondrr/internal/infrastructure/realtime"
	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
)

// callPayload is the wire shape of a call record, both in REST responses
// and in change-notifier events.
type callPayload struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	StartedBy      string     `json:"started_by"`
	Status         string     `json:"status"`
	RoomName       string     `json:"room_name"`
	RoomURL        string     `json:"room_url"`
	CreatedAt      time.Time  `json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

func toCallPayload(r call.Record) callPayload {
	return callPayload{
		ID:             r.ID,
		ConversationID: r.ConversationID,
		StartedBy:      r.StartedBy,
		Status:         string(r.Status),
		RoomName:       r.RoomName,
		RoomURL:        r.RoomURL,
		CreatedAt:      r.CreatedAt,
		StartedAt:      r.StartedAt,
		EndedAt:        r.EndedAt,
	}
}

// broadcastCall fans a call row change out to everyone watching the
// conversation, so callees see the ring and every tab sees the settle.
func broadcastCall(hub *realtime.Hub, kind realtime.EventKind, rec call.Record) {
	if hub == nil {
		return
	}
	ev, err := realtime.NewEvent(realtime.TableVideoCalls, kind, rec.ConversationID, toCallPayload(rec))
	if err != nil {
		return
	}
	if payload, err := realtime.EncodeEventFrame(ev); err == nil {
		hub.Broadcast(rec.ConversationID, payload)
	}
}

func failure(msg string) gin.H {
	return gin.H{"success": false, "error": msg}
}
