package usecase

import (
	"context"
	"errors"
	"fmt"

	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
	repoport "github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/port"
)

type RejectCallUseCase struct {
	Repo repoport.CallRepository
}

type RejectCallInput struct {
	CallID string
}

// Execute moves the record to rejected. Rejecting a call that already
// reached a terminal state is treated as settled, not as an error: the
// current record is returned and the caller carries on.
func (uc RejectCallUseCase) Execute(ctx context.Context, in RejectCallInput) (*call.Record, error) {
	rec, err := uc.Repo.Transition(ctx, in.CallID, call.StatusRejected)
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, repoport.ErrConflict) {
		if rec != nil && rec.Status.Terminal() {
			return rec, nil
		}
		return rec, err
	}
	if errors.Is(err, repoport.ErrCallNotFound) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
}
