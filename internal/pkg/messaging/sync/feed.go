package sync

import (
	"encoding/json"
	"time"

	"github.com/pranishuprety/Respondrr/internal/infrastructure/realtime"
	messaging "github.com/pranishuprety/Respondrr/internal/pkg/messaging/domain"
)

// NotifierFeed adapts the realtime feed client to the engine's Feed port,
// filtering for message inserts and decoding the wire row.
type NotifierFeed struct {
	Client *realtime.FeedClient
}

var _ Feed = (*NotifierFeed)(nil)

func (f *NotifierFeed) Subscribe(conversationID string, fn func(Event)) (func(), error) {
	return f.Client.Subscribe(conversationID, func(ev realtime.Event) {
		if ev.Table != realtime.TableMessages || ev.Kind != realtime.EventInsert {
			return
		}
		var row wireMessage
		if err := json.Unmarshal(ev.Row, &row); err != nil {
			// Malformed push payloads are dropped; the poll pass delivers the row.
			return
		}
		fn(Event{ConversationID: ev.ConversationID, Message: row.toDomain()})
	})
}

// wireMessage mirrors the server's broadcast payload for a message row.
type wireMessage struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversation_id"`
	SenderID       string           `json:"sender_id"`
	Body           *string          `json:"body"`
	MsgType        string           `json:"msg_type"`
	CreatedAt      time.Time        `json:"created_at"`
	Attachments    []wireAttachment `json:"attachments"`
}

type wireAttachment struct {
	ID         string `json:"id"`
	MessageID  string `json:"message_id"`
	Bucket     string `json:"bucket"`
	ObjectPath string `json:"object_path"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

func (w wireMessage) toDomain() messaging.Message {
	m := messaging.Message{
		ID:             w.ID,
		ConversationID: w.ConversationID,
		SenderID:       w.SenderID,
		Body:           w.Body,
		MsgType:        messaging.MessageType(w.MsgType),
		CreatedAt:      w.CreatedAt,
	}
	for _, a := range w.Attachments {
		m.Attachments = append(m.Attachments, messaging.Attachment{
			ID:         a.ID,
			MessageID:  a.MessageID,
			Bucket:     a.Bucket,
			ObjectPath: a.ObjectPath,
			FileName:   a.FileName,
			MimeType:   a.MimeType,
			SizeBytes:  a.SizeBytes,
		})
	}
	return m
}
