package signal

import (
	"encoding/json"
	"time"

	"github.com/pranishuprety/Respondrr/internal/infrastructure/realtime"
	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
)

// WatchConversation feeds video-call row changes for one conversation into
// the coordinator. Malformed rows are dropped; a later observation or a
// re-fetch after a conflict delivers the state. Returns the unsubscribe
// function.
func WatchConversation(feed *realtime.FeedClient, conversationID string, co *Coordinator) (func(), error) {
	return feed.Subscribe(conversationID, func(ev realtime.Event) {
		if ev.Table != realtime.TableVideoCalls {
			return
		}
		var row wireCall
		if err := json.Unmarshal(ev.Row, &row); err != nil {
			return
		}
		co.Observe(row.toDomain())
	})
}

// wireCall mirrors the server's broadcast payload for a call row.
type wireCall struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	StartedBy      string     `json:"started_by"`
	Status         string     `json:"status"`
	RoomName       string     `json:"room_name"`
	RoomURL        string     `json:"room_url"`
	CreatedAt      time.Time  `json:"created_at"`
	StartedAt      *time.Time `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`
}

func (w wireCall) toDomain() call.Record {
	return call.Record{
		ID:             w.ID,
		ConversationID: w.ConversationID,
		StartedBy:      w.StartedBy,
		Status:         call.Status(w.Status),
		RoomName:       w.RoomName,
		RoomURL:        w.RoomURL,
		CreatedAt:      w.CreatedAt,
		StartedAt:      w.StartedAt,
		EndedAt:        w.EndedAt,
	}
}
