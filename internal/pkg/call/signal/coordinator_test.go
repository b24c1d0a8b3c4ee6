package signal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
)

// signalStub is an in-memory signaling server with the same guarded
// transition semantics as the real one.
type signalStub struct {
	mu      sync.Mutex
	records map[string]*call.Record
	nextID  int
}

func newSignalStub() *signalStub {
	return &signalStub{records: make(map[string]*call.Record)}
}

func (s *signalStub) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/video/initiate-call", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		s.mu.Lock()
		s.nextID++
		id := fmt.Sprintf("call-%d", s.nextID)
		s.records[id] = &call.Record{
			ID:             id,
			ConversationID: body["conversation_id"],
			StartedBy:      body["initiated_by"],
			Status:         call.StatusRinging,
			RoomName:       "rm-" + id,
			RoomURL:        "https://r/rm-" + id,
			CreatedAt:      time.Now().UTC(),
		}
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true, "call_id": id,
			"room_name": "rm-" + id, "room_url": "https://r/rm-" + id, "token": "tok-init",
		})
	})
	action := func(to call.Status, respond func(w http.ResponseWriter, rec *call.Record)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			s.mu.Lock()
			rec, ok := s.records[body["call_id"]]
			if !ok {
				s.mu.Unlock()
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if !call.CanTransition(rec.Status, to) {
				status := string(rec.Status)
				s.mu.Unlock()
				w.WriteHeader(http.StatusConflict)
				_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "status": status})
				return
			}
			rec.Status = to
			cp := *rec
			s.mu.Unlock()
			respond(w, &cp)
		}
	}
	mux.HandleFunc("/api/video/accept-call", action(call.StatusAccepted, func(w http.ResponseWriter, rec *call.Record) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "tok-accept", "room_url": rec.RoomURL})
	}))
	mux.HandleFunc("/api/video/reject-call", action(call.StatusRejected, func(w http.ResponseWriter, _ *call.Record) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	mux.HandleFunc("/api/video/end-call", action(call.StatusEnded, func(w http.ResponseWriter, _ *call.Record) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	mux.HandleFunc("/api/v1/video/calls/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/api/v1/video/calls/"):]
		s.mu.Lock()
		rec, ok := s.records[id]
		if !ok {
			s.mu.Unlock()
			w.WriteHeader(http.StatusNotFound)
			return
		}
		cp := *rec
		s.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": cp.ID, "conversation_id": cp.ConversationID, "started_by": cp.StartedBy,
			"status": string(cp.Status), "room_name": cp.RoomName, "room_url": cp.RoomURL,
			"created_at": cp.CreatedAt,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (s *signalStub) record(id string) call.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.records[id]
}

func (s *signalStub) force(id string, to call.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id].Status = to
}

func TestInitiateThenAcceptHappyPath(t *testing.T) {
	stub := newSignalStub()
	srv := stub.server(t)

	caller := NewCoordinator(NewClient(srv.URL), "doctor-1")
	callee := NewCoordinator(NewClient(srv.URL), "patient-1")

	if err := caller.Initiate(context.Background(), "c1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	st := caller.State()
	if st.Phase != string(call.StatusRinging) || st.Token != "tok-init" || st.Incoming {
		t.Fatalf("unexpected caller state %+v", st)
	}

	// The callee sees the ringing row on the change feed.
	callee.Observe(stub.record(st.Call.ID))
	if got := callee.State(); !got.Incoming || got.Phase != string(call.StatusRinging) {
		t.Fatalf("callee should be prompted, got %+v", got)
	}

	if err := callee.Accept(context.Background()); err != nil {
		t.Fatalf("accept: %v", err)
	}
	got := callee.State()
	if got.Phase != string(call.StatusAccepted) || got.Token != "tok-accept" || got.Incoming {
		t.Fatalf("unexpected callee state %+v", got)
	}

	// The caller adopts the accepted record from the feed.
	caller.Observe(stub.record(st.Call.ID))
	if got := caller.State(); got.Phase != string(call.StatusAccepted) {
		t.Fatalf("caller should follow to accepted, got %+v", got)
	}
}

func TestRejectSettlesBothSides(t *testing.T) {
	stub := newSignalStub()
	srv := stub.server(t)

	caller := NewCoordinator(NewClient(srv.URL), "doctor-1")
	callee := NewCoordinator(NewClient(srv.URL), "patient-1")

	if err := caller.Initiate(context.Background(), "c1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	id := caller.State().Call.ID
	callee.Observe(stub.record(id))

	if err := callee.Reject(context.Background()); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got := callee.State(); got.Phase != string(call.StatusRejected) || got.Incoming {
		t.Fatalf("unexpected callee state %+v", got)
	}

	caller.Observe(stub.record(id))
	if got := caller.State(); got.Phase != string(call.StatusRejected) {
		t.Fatalf("caller should see the rejection, got %+v", got)
	}
}

func TestObservedAcceptDismissesOtherTabsPrompt(t *testing.T) {
	stub := newSignalStub()
	srv := stub.server(t)

	caller := NewCoordinator(NewClient(srv.URL), "doctor-1")
	tab1 := NewCoordinator(NewClient(srv.URL), "patient-1")
	tab2 := NewCoordinator(NewClient(srv.URL), "patient-1")

	if err := caller.Initiate(context.Background(), "c1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	id := caller.State().Call.ID
	tab1.Observe(stub.record(id))
	tab2.Observe(stub.record(id))
	if !tab1.State().Incoming || !tab2.State().Incoming {
		t.Fatal("both tabs should be prompted")
	}

	if err := tab1.Accept(context.Background()); err != nil {
		t.Fatalf("accept: %v", err)
	}

	tab2.Observe(stub.record(id))
	got := tab2.State()
	if got.Incoming {
		t.Fatal("second tab's prompt should be dismissed")
	}
	if got.Phase != string(call.StatusAccepted) {
		t.Fatalf("second tab should track accepted, got %+v", got)
	}

	// A late accept from the second tab is refused locally.
	if err := tab2.Accept(context.Background()); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected local conflict, got %v", err)
	}
}

func TestAcceptLosingRaceAdoptsRemoteState(t *testing.T) {
	stub := newSignalStub()
	srv := stub.server(t)

	caller := NewCoordinator(NewClient(srv.URL), "doctor-1")
	callee := NewCoordinator(NewClient(srv.URL), "patient-1")

	if err := caller.Initiate(context.Background(), "c1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	id := caller.State().Call.ID
	callee.Observe(stub.record(id))

	// The caller hangs up before the callee's accept lands.
	if err := caller.End(context.Background()); err != nil {
		t.Fatalf("end: %v", err)
	}

	if err := callee.Accept(context.Background()); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	got := callee.State()
	if got.Phase != string(call.StatusEnded) || got.Incoming {
		t.Fatalf("callee should adopt the ended record, got %+v", got)
	}
}

func TestObserveNeverMovesBackwards(t *testing.T) {
	stub := newSignalStub()
	srv := stub.server(t)

	co := NewCoordinator(NewClient(srv.URL), "doctor-1")
	if err := co.Initiate(context.Background(), "c1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	id := co.State().Call.ID
	if err := co.End(context.Background()); err != nil {
		t.Fatalf("end: %v", err)
	}

	// A stale poll result still showing ringing must not resurrect the call.
	stale := stub.record(id)
	stale.Status = call.StatusRinging
	co.Observe(stale)
	if got := co.State(); got.Phase != string(call.StatusEnded) {
		t.Fatalf("ended call was resurrected: %+v", got)
	}
}

func TestNewRingingAttemptReplacesSettledCall(t *testing.T) {
	stub := newSignalStub()
	srv := stub.server(t)

	callee := NewCoordinator(NewClient(srv.URL), "patient-1")

	first := call.Record{ID: "call-a", ConversationID: "c1", StartedBy: "doctor-1", Status: call.StatusRinging}
	callee.Observe(first)
	settled := first
	settled.Status = call.StatusRejected
	callee.Observe(settled)

	second := call.Record{ID: "call-b", ConversationID: "c1", StartedBy: "doctor-1", Status: call.StatusRinging}
	callee.Observe(second)
	got := callee.State()
	if got.Call == nil || got.Call.ID != "call-b" || !got.Incoming {
		t.Fatalf("new attempt should be tracked and prompted, got %+v", got)
	}
}

func TestEndIsIdempotentOnCoordinator(t *testing.T) {
	stub := newSignalStub()
	srv := stub.server(t)

	co := NewCoordinator(NewClient(srv.URL), "doctor-1")
	if err := co.Initiate(context.Background(), "c1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := co.End(context.Background()); err != nil {
		t.Fatalf("first end: %v", err)
	}
	if err := co.End(context.Background()); err != nil {
		t.Fatalf("repeated end should be a no-op, got %v", err)
	}
	if got := co.State(); got.Phase != string(call.StatusEnded) {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestAcceptYieldsToTerminalObservedMidRequest(t *testing.T) {
	var co *Coordinator
	ringing := call.Record{ID: "call-9", ConversationID: "c1", StartedBy: "doctor-1", Status: call.StatusRinging}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/video/accept-call", func(w http.ResponseWriter, r *http.Request) {
		// The peer hangs up right after the server commits the accept; the
		// feed delivers the terminal row before this response is processed.
		ended := ringing
		ended.Status = call.StatusEnded
		co.Observe(ended)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "tok-late", "room_url": "https://r/rm"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	co = NewCoordinator(NewClient(srv.URL), "patient-1")
	co.Observe(ringing)
	if !co.State().Incoming {
		t.Fatal("callee should be prompted")
	}

	if err := co.Accept(context.Background()); err != nil {
		t.Fatalf("accept: %v", err)
	}
	got := co.State()
	if got.Phase != string(call.StatusEnded) {
		t.Fatalf("observed terminal status was regressed to %q", got.Phase)
	}
	if got.Incoming {
		t.Fatal("prompt should stay dismissed")
	}
}

func TestSettleYieldsToTerminalObservedMidRequest(t *testing.T) {
	var co *Coordinator
	ringing := call.Record{ID: "call-9", ConversationID: "c1", StartedBy: "patient-1", Status: call.StatusRinging}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/video/end-call", func(w http.ResponseWriter, r *http.Request) {
		rejected := ringing
		rejected.Status = call.StatusRejected
		co.Observe(rejected)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	co = NewCoordinator(NewClient(srv.URL), "patient-1")
	co.Observe(ringing)

	if err := co.End(context.Background()); err != nil {
		t.Fatalf("end: %v", err)
	}
	if got := co.State(); got.Phase != string(call.StatusRejected) {
		t.Fatalf("observed terminal status was regressed to %q", got.Phase)
	}
}

func TestSubscriberSeesLifecycle(t *testing.T) {
	stub := newSignalStub()
	srv := stub.server(t)

	co := NewCoordinator(NewClient(srv.URL), "doctor-1")
	var mu sync.Mutex
	var phases []string
	co.OnChange(func(s State) {
		mu.Lock()
		phases = append(phases, s.Phase)
		mu.Unlock()
	})

	if err := co.Initiate(context.Background(), "c1"); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	id := co.State().Call.ID
	stub.force(id, call.StatusAccepted)
	co.Observe(stub.record(id))
	if err := co.End(context.Background()); err != nil {
		t.Fatalf("end: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"ringing", "accepted", "ended"}
	if len(phases) != len(want) {
		t.Fatalf("expected %v, got %v", want, phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, phases)
		}
	}
}
