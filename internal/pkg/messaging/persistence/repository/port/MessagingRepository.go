package repository

import (
	"context"
	"errors"
	"time"

	messaging "github.com/pranishuprety/Respondrr/internal/pkg/messaging/domain"
)

// ErrConversationNotFound is returned by lookups that target a missing thread.
var ErrConversationNotFound = errors.New("messaging: conversation not found")

// MessagingRepository defines persistence for conversations, messages and
// attachment rows. Messages are immutable once saved; conversations are only
// ever advanced (last_message_at), never deleted.
type MessagingRepository interface {
	// FindConversationByPair returns the unique (patient, doctor) thread or
	// ErrConversationNotFound.
	FindConversationByPair(ctx context.Context, patientID, doctorID string) (*messaging.Conversation, error)

	// GetConversation fetches a thread by id or ErrConversationNotFound.
	GetConversation(ctx context.Context, id string) (*messaging.Conversation, error)

	// CreateConversation inserts a new thread and returns its server-assigned id.
	CreateConversation(ctx context.Context, c messaging.Conversation) (string, error)

	// SaveMessage inserts a message row and returns its server-assigned id.
	SaveMessage(ctx context.Context, m messaging.Message) (string, error)

	// SaveAttachment inserts an attachment row and returns its id.
	SaveAttachment(ctx context.Context, a messaging.Attachment) (string, error)

	// ListMessages returns the full message list for a conversation ordered by
	// (created_at, id) ascending, attachments hydrated.
	ListMessages(ctx context.Context, conversationID string) ([]messaging.Message, error)

	// TouchConversation advances last_message_at; it never moves it backwards.
	TouchConversation(ctx context.Context, conversationID string, at time.Time) error
}
