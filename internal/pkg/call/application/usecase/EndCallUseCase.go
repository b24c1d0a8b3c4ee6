package usecase

import (
	"context"
	"errors"
	"fmt"

	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
	repoport "github.com/pranishuprety/Respondrr/internal/pkg/call/persistence/repository/port"
)

type EndCallUseCase struct {
	Repo repoport.CallRepository
}

type EndCallInput struct {
	CallID string
}

// Execute moves the record to ended. Either party may end, and ending a
// call that already settled elsewhere is a no-op success.
func (uc EndCallUseCase) Execute(ctx context.Context, in EndCallInput) (*call.Record, error) {
	rec, err := uc.Repo.Transition(ctx, in.CallID, call.StatusEnded)
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
