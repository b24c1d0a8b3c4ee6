package controller

import (
	"time"

	messaging "github.com/pranishuprety/Respondrr/internal/pkg/messaging/domain"
)

// messagePayload is the wire form of a message row, shared by the REST
// responses and the notifier broadcast so every delivery path agrees.
type messagePayload struct {
	ID             string              `json:"id"`
	ConversationID string              `json:"conversation_id"`
	SenderID       string              `json:"sender_id"`
	Body           *string             `json:"body,omitempty"`
	MsgType        string              `json:"msg_type"`
	CreatedAt      time.Time           `json:"created_at"`
	Attachments    []attachmentPayload `json:"attachments,omitempty"`
}

type attachmentPayload struct {
	ID         string `json:"id"`
	MessageID  string `json:"message_id"`
	Bucket     string `json:"bucket"`
	ObjectPath string `json:"object_path"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

func toMessagePayload(msg messaging.Message) messagePayload {
	p := messagePayload{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Body:           msg.Body,
		MsgType:        string(msg.MsgType),
		CreatedAt:      msg.CreatedAt,
	}
	for _, a := range msg.Attachments {
		p.Attachments = append(p.Attachments, attachmentPayload{
			ID:         a.ID,
			MessageID:  a.MessageID,
			Bucket:     a.Bucket,
			ObjectPath: a.ObjectPath,
			FileName:   a.FileName,
			MimeType:   a.MimeType,
			SizeBytes:  a.SizeBytes,
		})
	}
	return p
}
