package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
	port "github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/port"
)

type PgCallRepository struct {
	pool *pgxpool.Pool
}

func NewPgCallRepository(pool *pgxpool.Pool) *PgCallRepository {
	return &PgCallRepository{pool: pool}
}

var _ port.CallRepository = (*PgCallRepository)(nil)

func (r *PgCallRepository) CreateCall(ctx context.Context, rec call.Record) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgCallRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO care.video_call (conversation_id, started_by, status, room_name, room_url, created_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $6)
		RETURNING id::text
	`, rec.ConversationID, rec.StartedBy, string(rec.Status), rec.RoomName, rec.RoomURL, rec.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgCallRepository) GetCall(ctx context.Context, id string) (*call.Record, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgCallRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT id::text, conversation_id::text, started_by::text, status, room_name, room_url, created_at, started_at, ended_at
		FROM care.video_call
		WHERE id = $1::uuid
	`, id)
	return scanRecord(row)
}

// Transition applies the status move with the legality check inside the
// UPDATE itself, so two racing clients serialize on the row: the loser's
// guard matches nothing and the current record is re-read to tell a benign
// repeat from a genuine conflict.
func (r *PgCallRepository) Transition(ctx context.Context, id string, to call.Status) (*call.Record, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgCallRepository: nil pool")
	}
	if !to.Valid() {
		return nil, call.ErrBadStatus
	}

	now := time.Now().UTC()
	var startedAt, endedAt *time.Time
	switch to {
	case call.StatusAccepted:
		startedAt = &now
	case call.StatusEnded:
		endedAt = &now
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE care.video_call
		SET status = $2,
		    started_at = COALESCE(started_at, $3),
		    ended_at = COALESCE(ended_at, $4)
		WHERE id = $1::uuid
		  AND status = ANY($5)
		RETURNING id::text, conversation_id::text, started_by::text, status, room_name, room_url, created_at, started_at, ended_at
	`, id, string(to), startedAt, endedAt, legalSources(to))

	rec, err := scanRecord(row)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, port.ErrCallNotFound) {
		return nil, err
	}

	// Guard matched nothing: either the row is gone or it already moved.
	current, getErr := r.GetCall(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current.Status == to {
		return current, nil
	}
	return current, port.ErrConflict
}

// legalSources lists the statuses an UPDATE to `to` may leave from.
func legalSources(to call.Status) []string {
	var from []string
	for _, s := range []call.Status{call.StatusRinging, call.StatusAccepted, call.StatusRejected, call.StatusEnded} {
		if call.CanTransition(s, to) {
			from = append(from, string(s))
		}
	}
	return from
}

func scanRecord(row pgx.Row) (*call.Record, error) {
	var rec call.Record
	var status string
	err := row.Scan(&rec.ID, &rec.ConversationID, &rec.StartedBy, &status, &rec.RoomName, &rec.RoomURL, &rec.CreatedAt, &rec.StartedAt, &rec.EndedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrCallNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Status = call.Status(status)
	return &rec, nil
}
