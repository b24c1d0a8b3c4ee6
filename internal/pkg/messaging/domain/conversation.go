package messaging

import (
	"errors"
	"time"
)

// Conversation is the single thread between one patient and one doctor.
// At most one row exists per (patient, doctor) pair; it is created lazily on
// first contact and never deleted.
type Conversation struct {
	ID            string     `db:"id"`
	PatientID     string     `db:"patient_id"`
	DoctorID      string     `db:"doctor_id"`
	CreatedAt     time.Time  `db:"created_at"`
	LastMessageAt *time.Time `db:"last_message_at"`
}

var ErrConversationParties = errors.New("messaging: patient_id and doctor_id are required and must differ")

// NewConversation validates the pair and stamps the creation time.
func NewConversation(patientID, doctorID string, now time.Time) (*Conversation, error) {
	if patientID == "" || doctorID == "" || patientID == doctorID {
		return nil, ErrConversationParties
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &Conversation{PatientID: patientID, DoctorID: doctorID, CreatedAt: now.UTC()}, nil
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID string) bool {
	if c == nil || userID == "" {
		return false
	}
	return userID == c.PatientID || userID == c.DoctorID
}

// PeerOf returns the other party, or "" if userID is not a participant.
func (c *Conversation) PeerOf(userID string) string {
	switch {
	case c == nil:
		return ""
	case userID == c.PatientID:
		return c.DoctorID
	case userID == c.DoctorID:
		return c.PatientID
	default:
		return ""
	}
}
