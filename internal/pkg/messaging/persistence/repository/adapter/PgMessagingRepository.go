package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	messaging "github.com/pranishuprety/Respondrr/internal/pkg/messaging/domain"
	port "github.com/pranishuprety/Respondrr/internal/pkg/messaging/persistence/repository/port"
)

type PgMessagingRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessagingRepository(pool *pgxpool.Pool) *PgMessagingRepository {
	return &PgMessagingRepository{pool: pool}
}

var _ port.MessagingRepository = (*PgMessagingRepository)(nil)

func (r *PgMessagingRepository) FindConversationByPair(ctx context.Context, patientID, doctorID string) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, patient_id::text, doctor_id::text, created_at, last_message_at
		FROM care.conversation
		WHERE patient_id = $1::uuid AND doctor_id = $2::uuid
	`, patientID, doctorID)
	return scanConversation(row)
}

func (r *PgMessagingRepository) GetConversation(ctx context.Context, id string) (*messaging.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, patient_id::text, doctor_id::text, created_at, last_message_at
		FROM care.conversation
		WHERE id = $1::uuid
	`, id)
	return scanConversation(row)
}

func (r *PgMessagingRepository) CreateConversation(ctx context.Context, c messaging.Conversation) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgMessagingRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO care.conversation (patient_id, doctor_id, created_at)
		VALUES ($1::uuid, $2::uuid, $3)
		ON CONFLICT (patient_id, doctor_id) DO UPDATE SET patient_id = EXCLUDED.patient_id
		RETURNING id::text
	`, c.PatientID, c.DoctorID, c.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgMessagingRepository) SaveMessage(ctx context.Context, m messaging.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgMessagingRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO care.message (conversation_id, sender_id, body, msg_type, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5)
		RETURNING id::text
	`, m.ConversationID, m.SenderID, m.Body, string(m.MsgType), m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgMessagingRepository) SaveAttachment(ctx context.Context, a messaging.Attachment) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgMessagingRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO care.message_attachment (message_id, bucket, object_path, file_name, mime_type, size_bytes, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)
		RETURNING id::text
	`, a.MessageID, a.Bucket, a.ObjectPath, a.FileName, a.MimeType, a.SizeBytes, a.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgMessagingRepository) ListMessages(ctx context.Context, conversationID string) ([]messaging.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgMessagingRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, conversation_id::text, sender_id::text, body, msg_type, created_at
		FROM care.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC, id ASC
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []messaging.Message
	index := make(map[string]int)
	for rows.Next() {
		var (
			msg     messaging.Message
			body    *string
			msgType string
		)
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &body, &msgType, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Body = body
		msg.MsgType = messaging.MessageType(msgType)
		index[msg.ID] = len(msgs)
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(msgs) == 0 {
		return msgs, nil
	}

	if err := r.hydrateAttachments(ctx, conversationID, msgs, index); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *PgMessagingRepository) TouchConversation(ctx context.Context, conversationID string, at time.Time) error {
	if r == nil || r.pool == nil {
		return errors.New("PgMessagingRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE care.conversation
		SET last_message_at = $2
		WHERE id = $1::uuid
		  AND (last_message_at IS NULL OR last_message_at < $2)
	`, conversationID, at)
	if err != nil {
		return err
	}
	// Zero rows means either a missing thread or a newer watermark; only the
	// former is an error worth reporting.
	if ct.RowsAffected() == 0 {
		if _, err := r.GetConversation(ctx, conversationID); err != nil {
			return err
		}
	}
	return nil
}

func (r *PgMessagingRepository) hydrateAttachments(ctx context.Context, conversationID string, msgs []messaging.Message, index map[string]int) error {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id::text, a.message_id::text, a.bucket, a.object_path, a.file_name, a.mime_type, a.size_bytes, a.created_at
		FROM care.message_attachment a
		JOIN care.message m ON m.id = a.message_id
		WHERE m.conversation_id = $1::uuid
		ORDER BY a.created_at ASC
	`, conversationID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a messaging.Attachment
		if err := rows.Scan(&a.ID, &a.MessageID, &a.Bucket, &a.ObjectPath, &a.FileName, &a.MimeType, &a.SizeBytes, &a.CreatedAt); err != nil {
			return err
		}
		if i, ok := index[a.MessageID]; ok {
			msgs[i].Attachments = append(msgs[i].Attachments, a)
		}
	}
	return rows.Err()
}

func scanConversation(row pgx.Row) (*messaging.Conversation, error) {
	var c messaging.Conversation
	err := row.Scan(&c.ID, &c.PatientID, &c.DoctorID, &c.CreatedAt, &c.LastMessageAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
