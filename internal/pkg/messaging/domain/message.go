package messaging

import (
	"errors"
	"strings"
	"time"
)

// MessageType distinguishes plain text messages from ones that carry files.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeMixed MessageType = "mixed"
)

// Valid reports whether t is a known message type. Client-supplied values
// are validated here before they reach the store or a broadcast.
func (t MessageType) Valid() bool {
	return t == MessageTypeText || t == MessageTypeMixed
}

// Message is an immutable log entry in a conversation. IDs are assigned by
// the store on insert and are monotonic-ish by creation time, but never
// strictly ordered across clients; readers order by (created_at, id).
type Message struct {
	ID             string       `db:"id"`
	ConversationID string       `db:"conversation_id"`
	SenderID       string       `db:"sender_id"`
	Body           *string      `db:"body"`
	MsgType        MessageType  `db:"msg_type"`
	CreatedAt      time.Time    `db:"created_at"`
	Attachments    []Attachment `db:"-"`
}

var (
	ErrMessageIdentity = errors.New("messaging: conversation_id and sender_id are required")
	ErrEmptyMessage    = errors.New("messaging: message must contain a body or an attachment")
	ErrBadMessageType  = errors.New("messaging: unknown msg_type")
)

// NewMessage normalizes and validates a candidate message. A "mixed" message
// may pass validation with a body alone; whether its attachments get realized
// is decided later by the upload path.
func NewMessage(m Message) (*Message, error) {
	if m.ConversationID == "" || m.SenderID == "" {
		return nil, ErrMessageIdentity
	}

	if m.Body != nil {
		trimmed := strings.TrimSpace(*m.Body)
		if trimmed == "" {
			m.Body = nil
		} else {
			m.Body = &trimmed
		}
	}

	if m.MsgType == "" {
		m.MsgType = MessageTypeText
	}
	if !m.MsgType.Valid() {
		return nil, ErrBadMessageType
	}

	if m.Body == nil && m.MsgType != MessageTypeMixed {
		return nil, ErrEmptyMessage
	}
	if m.MsgType == MessageTypeMixed && m.Body == nil && len(m.Attachments) == 0 {
		return nil, ErrEmptyMessage
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	return &m, nil
}
