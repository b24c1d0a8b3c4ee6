package signal

import (
	"context"
	"errors"
	"sync"

	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
)

// State is a point-in-time snapshot of the coordinator for UI consumption.
// Phase "idle" means no call is tracked; otherwise it mirrors the record's
// status. Incoming is true while a ringing call started by the peer awaits
// a local answer.
type State struct {
	Phase    string
	Call     *call.Record
	Token    string
	RoomURL  string
	Incoming bool
}

const PhaseIdle = "idle"

// Coordinator drives one user's side of the call lifecycle. All status
// changes go through the signaling server first; the coordinator never
// invents a transition locally. Observed records from the change feed are
// authoritative and adopted under a forward-only guard, so a stale poll
// can never resurrect a settled call.
type Coordinator struct {
	client *Client
	userID string

	mu       sync.Mutex
	current  *call.Record
	token    string
	incoming bool
	subs     []func(State)
}

func NewCoordinator(client *Client, userID string) *Coordinator {
	return &Coordinator{client: client, userID: userID}
}

// OnChange registers a subscriber. Every adoption of a new state delivers a
// snapshot; subscribers run outside the coordinator lock.
func (co *Coordinator) OnChange(fn func(State)) {
	if fn == nil {
		return
	}
	co.mu.Lock()
	co.subs = append(co.subs, fn)
	co.mu.Unlock()
}

// State returns the current snapshot.
func (co *Coordinator) State() State {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.snapshotLocked()
}

// Initiate rings the conversation. It refuses while another call is still
// live; a failed request leaves the coordinator untouched.
func (co *Coordinator) Initiate(ctx context.Context, conversationID string) error {
	co.mu.Lock()
	if co.current != nil && !co.current.Status.Terminal() {
		co.mu.Unlock()
		return ErrConflict
	}
	co.mu.Unlock()

	res, err := co.client.Initiate(ctx, conversationID, co.userID)
	if err != nil {
		return err
	}

	co.mu.Lock()
	co.current = &call.Record{
		ID:             res.CallID,
		ConversationID: conversationID,
		StartedBy:      co.userID,
		Status:         call.StatusRinging,
		RoomName:       res.RoomName,
		RoomURL:        res.RoomURL,
	}
	co.token = res.Token
	co.incoming = false
	snap, subs := co.snapshotLocked(), co.subsLocked()
	co.mu.Unlock()

	notify(subs, snap)
	return nil
}

// Observe feeds a call record seen on the change feed (or a poll) into the
// coordinator. Fresh remote state wins; transitions that would move the
// tracked record backwards are dropped. A ringing record started by the
// peer raises the incoming prompt, and an observed accept from another
// device dismisses it.
func (co *Coordinator) Observe(rec call.Record) {
	if !rec.Status.Valid() {
		return
	}

	co.mu.Lock()
	changed := false

	switch {
	case co.current != nil && co.current.ID == rec.ID:
		if rec.Status != co.current.Status && call.CanTransition(co.current.Status, rec.Status) {
			co.current = &rec
			changed = true
		}
	case co.current == nil || co.current.Status.Terminal():
		// A new attempt replaces a settled or absent call, but only a
		// ringing one: terminal rows for calls we never tracked are noise.
		if rec.Status == call.StatusRinging {
			co.current = &rec
			co.token = ""
			changed = true
		}
	}

	if changed {
		if co.current.Status == call.StatusRinging {
			co.incoming = co.current.IncomingFor(co.userID)
		} else {
			co.incoming = false
		}
	}

	if !changed {
		co.mu.Unlock()
		return
	}
	snap, subs := co.snapshotLocked(), co.subsLocked()
	co.mu.Unlock()

	notify(subs, snap)
}

// Accept answers the tracked ringing call. Losing the race returns
// ErrConflict after adopting the authoritative record, so the caller can
// show the call's real fate instead of a dead room.
func (co *Coordinator) Accept(ctx context.Context) error {
	co.mu.Lock()
	cur := co.current
	co.mu.Unlock()
	if cur == nil || cur.Status != call.StatusRinging {
		return ErrConflict
	}

	res, err := co.client.Accept(ctx, cur.ID, co.userID)
	if errors.Is(err, ErrConflict) {
		co.adoptRemote(ctx, cur.ID)
		return ErrConflict
	}
	if err != nil {
		return err
	}

	co.mu.Lock()
	// A terminal status observed while the request was in flight wins over
	// the response; committing would move the call backwards.
	if co.current == nil || co.current.ID != cur.ID || !call.CanTransition(co.current.Status, call.StatusAccepted) {
		co.mu.Unlock()
		return nil
	}
	updated := *co.current
	updated.Status = call.StatusAccepted
	co.current = &updated
	co.token = res.Token
	co.incoming = false
	snap, subs := co.snapshotLocked(), co.subsLocked()
	co.mu.Unlock()

	notify(subs, snap)
	return nil
}

// Reject declines the tracked ringing call. A conflict means the call
// settled elsewhere first; the remote record is adopted and the decline is
// treated as done.
func (co *Coordinator) Reject(ctx context.Context) error {
	co.mu.Lock()
	cur := co.current
	co.mu.Unlock()
	if cur == nil || cur.Status.Terminal() {
		return nil
	}

	err := co.client.Reject(ctx, cur.ID)
	if errors.Is(err, ErrConflict) {
		co.adoptRemote(ctx, cur.ID)
		return nil
	}
	if err != nil {
		return err
	}

	co.settle(cur.ID, call.StatusRejected)
	return nil
}

// End hangs up the tracked call. Ending an already-settled call is a no-op.
func (co *Coordinator) End(ctx context.Context) error {
	co.mu.Lock()
	cur := co.current
	co.mu.Unlock()
	if cur == nil || cur.Status.Terminal() {
		return nil
	}

	err := co.client.End(ctx, cur.ID)
	if errors.Is(err, ErrConflict) {
		co.adoptRemote(ctx, cur.ID)
		return nil
	}
	if err != nil {
		return err
	}

	co.settle(cur.ID, call.StatusEnded)
	return nil
}

// settle records a confirmed terminal transition for the tracked call. The
// forward-only guard keeps a status observed mid-request from regressing.
func (co *Coordinator) settle(callID string, to call.Status) {
	co.mu.Lock()
	if co.current == nil || co.current.ID != callID || !call.CanTransition(co.current.Status, to) {
		co.mu.Unlock()
		return
	}
	updated := *co.current
	updated.Status = to
	co.current = &updated
	co.incoming = false
	snap, subs := co.snapshotLocked(), co.subsLocked()
	co.mu.Unlock()

	notify(subs, snap)
}

// adoptRemote re-fetches the record after a lost race and feeds it back
// through Observe, which applies the usual monotonic guard.
func (co *Coordinator) adoptRemote(ctx context.Context, callID string) {
	rec, err := co.client.GetCall(ctx, callID)
	if err != nil || rec == nil {
		return
	}
	co.Observe(*rec)
}

func (co *Coordinator) snapshotLocked() State {
	s := State{Phase: PhaseIdle, Token: co.token, Incoming: co.incoming}
	if co.current != nil {
		cp := *co.current
		s.Call = &cp
		s.Phase = string(cp.Status)
		s.RoomURL = cp.RoomURL
	}
	return s
}

func (co *Coordinator) subsLocked() []func(State) {
	subs := make([]func(State), len(co.subs))
	copy(subs, co.subs)
	return subs
}

func notify(subs []func(State), snap State) {
	for _, fn := range subs {
		fn(snap)
	}
}
