package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	qport "github.com/pranishuprety/Respondrr/internal/infrastructure/queue/port"
	repoAdapter "github.com/pranishuprety/Respondrr/internal/pkg/messaging/persistence/repository/adapter"
)

// TouchConversationTaskType advances a conversation's last_message_at after
// a message insert. The update only ever moves the watermark forward, so the
// handler is safe to retry.
const TouchConversationTaskType = "messaging:touch_conversation"

// TouchConversationPayload is the JSON payload transported via the queue.
type TouchConversationPayload struct {
	ConversationID string    `json:"conversationId"`
	At             time.Time `json:"at"`
}

// RegisterTouchConversationTask binds the handler to the worker server.
func RegisterTouchConversationTask(srv qport.Server, pool *pgxpool.Pool) {
	srv.Register(TouchConversationTaskType, func(ctx context.Context, t qport.Task) error {
		var p TouchConversationPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying will not help
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		repo := repoAdapter.NewPgMessagingRepository(pool)
		return repo.TouchConversation(ctx, p.ConversationID, p.At)
	})
}
