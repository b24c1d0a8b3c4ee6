package usecase

import (
	"context"
	"errors"
	"fmt"

	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
	hostport "github.com/pranishuprety/Respondrr/internal/pkg/call/host/port"
	repoport "github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/port"
)

type AcceptCallUseCase struct {
	Repo  repoport.CallRepository
	Rooms hostport.RoomProvider
}

type AcceptCallInput struct {
	CallID     string
	AcceptedBy string
}

type AcceptCallOutput struct {
	Call  *call.Record
	Token string
}

// Execute moves the record to accepted and mints the callee's meeting
// token. A lost race surfaces as repoport.ErrConflict with the current
// record attached, so the caller can report the state the call is really in.
func (uc AcceptCallUseCase) Execute(ctx context.Context, in AcceptCallInput) (*AcceptCallOutput, error) {
	rec, err := uc.Repo.Transition(ctx, in.CallID, call.StatusAccepted)
	if err != nil {
		if errors.Is(err, repoport.ErrConflict) || errors.Is(err, repoport.ErrCallNotFound) {
			return &AcceptCallOutput{Call: rec}, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	token, err := uc.Rooms.MeetingToken(ctx, rec.RoomName, in.AcceptedBy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRoomProvider, err)
	}

	return &AcceptCallOutput{Call: rec, Token: token}, nil
}
