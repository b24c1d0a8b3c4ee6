package call

import (
	"testing"
	"time"
)

func TestStatusTransitionsAreForwardOnly(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusRinging, StatusAccepted},
		{StatusRinging, StatusRejected},
		{StatusRinging, StatusEnded},
		{StatusAccepted, StatusEnded},
		{StatusEnded, StatusEnded},
		{StatusRejected, StatusRejected},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to Status }{
		{StatusAccepted, StatusRinging},
		{StatusRejected, StatusAccepted},
		{StatusEnded, StatusAccepted},
		{StatusEnded, StatusRinging},
		{StatusRejected, StatusEnded},
	}
	for _, tc := range forbidden {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	if StatusRinging.Terminal() || StatusAccepted.Terminal() {
		t.Error("ringing/accepted must not be terminal")
	}
	if !StatusRejected.Terminal() || !StatusEnded.Terminal() {
		t.Error("rejected/ended must be terminal")
	}
	if Status("missed").Valid() {
		t.Error("legacy status names are not part of the vocabulary")
	}
}

func TestIncomingFor(t *testing.T) {
	rec, err := NewRecord("conv-42", "doctor-1", "room", "https://r/7", time.Now())
	if err != nil {
		t.Fatalf("new record: %v", err)
	}

	if !rec.IncomingFor("patient-1") {
		t.Error("expected ringing call from peer to be incoming")
	}
	if rec.IncomingFor("doctor-1") {
		t.Error("initiator must not see their own call as incoming")
	}

	rec.Status = StatusAccepted
	if rec.IncomingFor("patient-1") {
		t.Error("non-ringing call must not prompt")
	}
}
