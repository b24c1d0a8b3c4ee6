package usecase

import (
	"context"
	"fmt"
	"time"

	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
	hostport "github.com/pranishuprety/Respondrr/internal/pkg/call/host/port"
	repoport "github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/port"
)

type InitiateCallUseCase struct {
	Repo  repoport.CallRepository
	Rooms hostport.RoomProvider
}

type InitiateCallInput struct {
	ConversationID string
	InitiatedBy    string
}

type InitiateCallOutput struct {
	Call  *call.Record
	Token string
}

// Execute provisions a media room, inserts the ringing record that callees
// will discover, and mints the initiator's meeting token.
func (uc InitiateCallUseCase) Execute(ctx context.Context, in InitiateCallInput) (*InitiateCallOutput, error) {
	room, err := uc.Rooms.CreateRoom(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoomProvider, err)
	}

	rec, err := call.NewRecord(in.ConversationID, in.InitiatedBy, room.Name, room.URL, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.CreateCall(ctx, *rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	rec.ID = id

	token, err := uc.Rooms.MeetingToken(ctx, room.Name, in.InitiatedBy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoomProvider, err)
	}

	return &InitiateCallOutput{Call: rec, Token: token}, nil
}
