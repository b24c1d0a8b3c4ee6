package usecase

import (
	"context"
	"fmt"
	"time"

	cacheport "github.com/pranishuprety/Respondrr/internal/infrastructure/cache/port"
	messaging "github.com/pranishuprety/Respondrr/internal/pkg/messaging/domain"
	repository "github.com/pranishuprety/Respondrr/internal/pkg/messaging/persistence/repository/port"
)

// EnsureConversationInput identifies the (patient, doctor) pair to resolve.
type EnsureConversationInput struct {
	PatientID string
	DoctorID  string
}

// EnsureConversationUseCase resolves the unique thread for a pair, creating
// it lazily on first contact. Pair-to-id mappings are immutable, so they are
// memoized in the cache when one is provided.
type EnsureConversationUseCase struct {
	Repo  repository.MessagingRepository
	Cache cacheport.Cache // optional
}

const conversationCacheTTL = 24 * time.Hour

func NewEnsureConversationUseCase(repo repository.MessagingRepository, cache cacheport.Cache) *EnsureConversationUseCase {
	return &EnsureConversationUseCase{Repo: repo, Cache: cache}
}

func (uc *EnsureConversationUseCase) Execute(ctx context.Context, in EnsureConversationInput) (*messaging.Conversation, error) {
	candidate, err := messaging.NewConversation(in.PatientID, in.DoctorID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	key := pairKey(in.PatientID, in.DoctorID)
	if uc.Cache != nil {
		if id, err := uc.Cache.Get(ctx, key); err == nil && id != "" {
			if conv, err := uc.Repo.GetConversation(ctx, id); err == nil {
				return conv, nil
			}
			// Stale entry; fall through to the authoritative lookup.
			_, _ = uc.Cache.Del(ctx, key)
		}
	}

	conv, err := uc.Repo.FindConversationByPair(ctx, in.PatientID, in.DoctorID)
	if err == repository.ErrConversationNotFound {
		id, createErr := uc.Repo.CreateConversation(ctx, *candidate)
		if createErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, createErr)
		}
		candidate.ID = id
		conv = candidate
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Cache != nil {
		_ = uc.Cache.Set(ctx, key, conv.ID, conversationCacheTTL)
	}
	return conv, nil
}

func pairKey(patientID, doctorID string) string {
	return "conv:" + patientID + ":" + doctorID
}
