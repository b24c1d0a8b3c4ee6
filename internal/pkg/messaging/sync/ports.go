package sync

import (
	"context"
	"time"

	messaging "github.com/pranishuprety/Respondrr/internal/pkg/messaging/domain"
)

// Store is the record-store slice the engine needs. The pg messaging
// repository satisfies it directly; tests use an in-memory fake.
type Store interface {
	// ListMessages returns the authoritative ordered list, ascending by
	// (created_at, id), attachments hydrated.
	ListMessages(ctx context.Context, conversationID string) ([]messaging.Message, error)

	// SaveMessage inserts a row and returns the server-assigned id.
	SaveMessage(ctx context.Context, m messaging.Message) (string, error)

	// SaveAttachment inserts an attachment row and returns its id.
	SaveAttachment(ctx context.Context, a messaging.Attachment) (string, error)

	// TouchConversation advances the thread's last_message_at watermark.
	TouchConversation(ctx context.Context, conversationID string, at time.Time) error
}

// BlobStore uploads attachment bytes. Separate from Store because the blob
// write and the attachment row insert are independent operations that can
// fail independently.
type BlobStore interface {
	Upload(ctx context.Context, bucket, path string, data []byte) error
}

// Event is one push-delivered message insert.
type Event struct {
	ConversationID string
	Message        messaging.Message
}

// Feed is the push side of the dual delivery path. Subscribe registers fn
// for a conversation's message inserts and returns an unsubscribe func.
// Delivery is best-effort and at-most-once.
type Feed interface {
	Subscribe(conversationID string, fn func(Event)) (func(), error)
}

// Subscriber receives a fresh snapshot of the view after every change.
type Subscriber func(view []messaging.Message)
