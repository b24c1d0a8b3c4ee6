package usecase

import (
	"context"
	"fmt"

	messaging "github.com/pranishuprety/Respondrr/internal/pkg/messaging/domain"
	repository "github.com/pranishuprety/Respondrr/internal/pkg/messaging/persistence/repository/port"
)

// GetMessagesInput wraps the conversation to list.
type GetMessagesInput struct {
	ConversationID string
}

// GetMessagesUseCase returns the full ordered message list for a thread.
// This is the authoritative read the sync engine's poll pass relies on, so
// it deliberately returns everything ascending rather than a page.
type GetMessagesUseCase struct {
	Repo repository.MessagingRepository
}

func NewGetMessagesUseCase(repo repository.MessagingRepository) *GetMessagesUseCase {
	return &GetMessagesUseCase{Repo: repo}
}

func (uc *GetMessagesUseCase) Execute(ctx context.Context, in GetMessagesInput) ([]messaging.Message, error) {
	if in.ConversationID == "" {
		return nil, fmt.Errorf("conversation_id is required")
	}
	msgs, err := uc.Repo.ListMessages(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return msgs, nil
}
