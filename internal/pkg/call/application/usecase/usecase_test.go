package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
	hostport "github.com/pranishuprety/Respondrr/internal/pkg/call/host/port"
	repoport "github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/port"
)

type fakeCallRepo struct {
	records map[string]*call.Record
	nextID  int
}

func newFakeCallRepo() *fakeCallRepo {
	return &fakeCallRepo{records: make(map[string]*call.Record)}
}

func (f *fakeCallRepo) CreateCall(_ context.Context, r call.Record) (string, error) {
	f.nextID++
	id := fmt.Sprintf("call-%d", f.nextID)
	r.ID = id
	f.records[id] = &r
	return id, nil
}

func (f *fakeCallRepo) GetCall(_ context.Context, id string) (*call.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, repoport.ErrCallNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeCallRepo) Transition(_ context.Context, id string, to call.Status) (*call.Record, error) {
	rec, ok := f.records[id]
	if !ok {
		return nil, repoport.ErrCallNotFound
	}
	if !call.CanTransition(rec.Status, to) {
		cp := *rec
		return &cp, repoport.ErrConflict
	}
	rec.Status = to
	now := time.Now().UTC()
	switch to {
	case call.StatusAccepted:
		if rec.StartedAt == nil {
			rec.StartedAt = &now
		}
	case call.StatusEnded:
		if rec.EndedAt == nil {
			rec.EndedAt = &now
		}
	}
	cp := *rec
	return &cp, nil
}

type fakeRooms struct {
	tokenErr error
}

func (f *fakeRooms) CreateRoom(_ context.Context, conversationID string) (hostport.Room, error) {
	name := "conv-" + conversationID + "-abc123"
	return hostport.Room{Name: name, URL: "https://rooms.test/" + name}, nil
}

func (f *fakeRooms) MeetingToken(_ context.Context, roomName, userName string) (string, error) {
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return "tok-" + roomName + "-" + userName, nil
}

func TestInitiateCreatesRingingRecordWithToken(t *testing.T) {
	repo := newFakeCallRepo()
	uc := InitiateCallUseCase{Repo: repo, Rooms: &fakeRooms{}}

	out, err := uc.Execute(context.Background(), InitiateCallInput{ConversationID: "c1", InitiatedBy: "doctor-1"})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if out.Call.Status != call.StatusRinging {
		t.Errorf("expected ringing, got %s", out.Call.Status)
	}
	if out.Call.ID == "" || out.Call.RoomURL == "" || out.Token == "" {
		t.Errorf("incomplete output %+v token=%q", out.Call, out.Token)
	}
	if _, ok := repo.records[out.Call.ID]; !ok {
		t.Error("record not persisted")
	}
}

func TestAcceptMovesRingingToAccepted(t *testing.T) {
	repo := newFakeCallRepo()
	init := InitiateCallUseCase{Repo: repo, Rooms: &fakeRooms{}}
	created, err := init.Execute(context.Background(), InitiateCallInput{ConversationID: "c1", InitiatedBy: "doctor-1"})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	uc := AcceptCallUseCase{Repo: repo, Rooms: &fakeRooms{}}
	out, err := uc.Execute(context.Background(), AcceptCallInput{CallID: created.Call.ID, AcceptedBy: "patient-1"})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if out.Call.Status != call.StatusAccepted {
		t.Errorf("expected accepted, got %s", out.Call.Status)
	}
	if out.Call.StartedAt == nil {
		t.Error("started_at not stamped")
	}
	if out.Token == "" {
		t.Error("callee got no token")
	}
}

func TestAcceptAfterEndReturnsConflictWithCurrentState(t *testing.T) {
	repo := newFakeCallRepo()
	init := InitiateCallUseCase{Repo: repo, Rooms: &fakeRooms{}}
	created, _ := init.Execute(context.Background(), InitiateCallInput{ConversationID: "c1", InitiatedBy: "doctor-1"})

	end := EndCallUseCase{Repo: repo}
	if _, err := end.Execute(context.Background(), EndCallInput{CallID: created.Call.ID}); err != nil {
		t.Fatalf("end: %v", err)
	}

	accept := AcceptCallUseCase{Repo: repo, Rooms: &fakeRooms{}}
	out, err := accept.Execute(context.Background(), AcceptCallInput{CallID: created.Call.ID, AcceptedBy: "patient-1"})
	if !errors.Is(err, repoport.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if out == nil || out.Call == nil || out.Call.Status != call.StatusEnded {
		t.Errorf("conflict should carry the current record, got %+v", out)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	repo := newFakeCallRepo()
	init := InitiateCallUseCase{Repo: repo, Rooms: &fakeRooms{}}
	created, _ := init.Execute(context.Background(), InitiateCallInput{ConversationID: "c1", InitiatedBy: "doctor-1"})

	end := EndCallUseCase{Repo: repo}
	first, err := end.Execute(context.Background(), EndCallInput{CallID: created.Call.ID})
	if err != nil {
		t.Fatalf("first end: %v", err)
	}
	second, err := end.Execute(context.Background(), EndCallInput{CallID: created.Call.ID})
	if err != nil {
		t.Fatalf("second end should be a no-op success, got %v", err)
	}
	if second.Status != call.StatusEnded {
		t.Errorf("expected ended, got %s", second.Status)
	}
	if first.EndedAt == nil || second.EndedAt == nil || !first.EndedAt.Equal(*second.EndedAt) {
		t.Error("repeated end must not re-stamp ended_at")
	}
}

func TestRejectAfterRejectIsSettled(t *testing.T) {
	repo := newFakeCallRepo()
	init := InitiateCallUseCase{Repo: repo, Rooms: &fakeRooms{}}
	created, _ := init.Execute(context.Background(), InitiateCallInput{ConversationID: "c1", InitiatedBy: "doctor-1"})

	reject := RejectCallUseCase{Repo: repo}
	if _, err := reject.Execute(context.Background(), RejectCallInput{CallID: created.Call.ID}); err != nil {
		t.Fatalf("first reject: %v", err)
	}
	rec, err := reject.Execute(context.Background(), RejectCallInput{CallID: created.Call.ID})
	if err != nil {
		t.Fatalf("repeated reject should settle quietly, got %v", err)
	}
	if rec.Status != call.StatusRejected {
		t.Errorf("expected rejected, got %s", rec.Status)
	}
}

func TestRejectAfterAcceptSurfacesConflict(t *testing.T) {
	repo := newFakeCallRepo()
	init := InitiateCallUseCase{Repo: repo, Rooms: &fakeRooms{}}
	created, _ := init.Execute(context.Background(), InitiateCallInput{ConversationID: "c1", InitiatedBy: "doctor-1"})

	accept := AcceptCallUseCase{Repo: repo, Rooms: &fakeRooms{}}
	if _, err := accept.Execute(context.Background(), AcceptCallInput{CallID: created.Call.ID, AcceptedBy: "patient-1"}); err != nil {
		t.Fatalf("accept: %v", err)
	}

	reject := RejectCallUseCase{Repo: repo}
	rec, err := reject.Execute(context.Background(), RejectCallInput{CallID: created.Call.ID})
	if !errors.Is(err, repoport.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if rec == nil || rec.Status != call.StatusAccepted {
		t.Errorf("conflict should carry the accepted record, got %+v", rec)
	}
}
