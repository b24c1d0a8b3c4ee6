package repository

import (
	"context"
	"errors"

	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
)

var (
	// ErrCallNotFound is returned when no record exists for the id.
	ErrCallNotFound = errors.New("call: record not found")

	// ErrConflict is returned when a requested transition loses the race:
	// the record already moved to a state the transition cannot leave. The
	// store is the serialization point; callers re-read and adopt.
	ErrConflict = errors.New("call: conflicting state transition")
)

// CallRepository persists call records. Status updates are guarded so a
// terminal or concurrent transition surfaces ErrConflict instead of
// overwriting history.
type CallRepository interface {
	// CreateCall inserts a ringing record and returns its server-assigned id.
	CreateCall(ctx context.Context, r call.Record) (string, error)

	// GetCall fetches a record or ErrCallNotFound.
	GetCall(ctx context.Context, id string) (*call.Record, error)

	// Transition moves the record from its current status to `to`, stamping
	// started_at/ended_at as appropriate. Re-asserting the current status is
	// a no-op success; an illegal move returns ErrConflict.
	Transition(ctx context.Context, id string, to call.Status) (*call.Record, error)
}
