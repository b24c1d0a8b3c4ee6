package call

import (
	"errors"
	"time"
)

// Status is the lifecycle stage of one call attempt. Transitions only move
// forward: Ringing may become Accepted, Rejected or Ended; Accepted may
// become Ended; Rejected and Ended are terminal. A call record is never
// reused; a second attempt always gets a new id.
type Status string

const (
	StatusRinging  Status = "ringing"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusEnded    Status = "ended"
)

// Valid reports whether s is a known status value. Payloads from the store
// are validated at the boundary before they reach any state machine.
func (s Status) Valid() bool {
	switch s {
	case StatusRinging, StatusAccepted, StatusRejected, StatusEnded:
		return true
	}
	return false
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusEnded
}

// CanTransition reports whether from -> to respects forward-only movement.
// Re-asserting the current status is allowed so repeated end calls stay
// no-op successes.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	switch from {
	case StatusRinging:
		return to == StatusAccepted || to == StatusRejected || to == StatusEnded
	case StatusAccepted:
		return to == StatusEnded
	default:
		return false
	}
}

// Record is the shared call row both clients race over. The room handle is
// populated when the call is created; per-user meeting tokens are issued by
// the signaling endpoints and never stored.
type Record struct {
	ID             string     `db:"id"`
	ConversationID string     `db:"conversation_id"`
	StartedBy      string     `db:"started_by"`
	Status         Status     `db:"status"`
	RoomName       string     `db:"room_name"`
	RoomURL        string     `db:"room_url"`
	CreatedAt      time.Time  `db:"created_at"`
	StartedAt      *time.Time `db:"started_at"`
	EndedAt        *time.Time `db:"ended_at"`
}

var (
	ErrRecordIdentity = errors.New("call: conversation_id and started_by are required")
	ErrBadStatus      = errors.New("call: unknown status")
)

// NewRecord validates a candidate ringing row.
func NewRecord(conversationID, startedBy, roomName, roomURL string, now time.Time) (*Record, error) {
	if conversationID == "" || startedBy == "" {
		return nil, ErrRecordIdentity
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &Record{
		ConversationID: conversationID,
		StartedBy:      startedBy,
		Status:         StatusRinging,
		RoomName:       roomName,
		RoomURL:        roomURL,
		CreatedAt:      now.UTC(),
	}, nil
}

// IncomingFor reports whether the record should raise an incoming-call
// prompt for userID: a fresh ringing attempt started by the peer.
func (r *Record) IncomingFor(userID string) bool {
	return r != nil && r.Status == StatusRinging && r.StartedBy != userID && userID != ""
}
