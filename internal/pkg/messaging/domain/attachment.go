package messaging

import (
	"errors"
	"time"
)

// Attachment links a message to a stored file. The blob upload and the row
// insert are two separate operations; a failure between them leaves a
// "mixed" message with no realized attachment, which the sync core surfaces
// but does not repair.
type Attachment struct {
	ID         string    `db:"id"`
	MessageID  string    `db:"message_id"`
	Bucket     string    `db:"bucket"`
	ObjectPath string    `db:"object_path"`
	FileName   string    `db:"file_name"`
	MimeType   string    `db:"mime_type"`
	SizeBytes  int64     `db:"size_bytes"`
	CreatedAt  time.Time `db:"created_at"`
}

var ErrAttachmentLocation = errors.New("messaging: attachment bucket and object_path are required")

// NewAttachment validates storage addressing for a pending attachment row.
func NewAttachment(a Attachment) (*Attachment, error) {
	if a.MessageID == "" {
		return nil, ErrMessageIdentity
	}
	if a.Bucket == "" || a.ObjectPath == "" {
		return nil, ErrAttachmentLocation
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return &a, nil
}
