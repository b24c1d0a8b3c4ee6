package usecase

import (
	"context"
	"fmt"

	messaging "github.com/pranishuprety/Respondrr/internal/pkg/messaging/domain"
	repository "github.com/pranishuprety/Respondrr/internal/pkg/messaging/persistence/repository/port"
)

// SendMessageInput carries the data needed to persist a new message.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Body           *string
	MsgType        messaging.MessageType
}

// SendMessageUseCase validates and persists one message row. It does not
// advance the conversation watermark; callers either touch it inline (client
// engine) or enqueue the touch task (HTTP controller).
type SendMessageUseCase struct {
	Repo repository.MessagingRepository
}

func NewSendMessageUseCase(repo repository.MessagingRepository) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*messaging.Message, error) {
	if in.ConversationID == "" || in.SenderID == "" {
		return nil, messaging.ErrMessageIdentity
	}

	conv, err := uc.Repo.GetConversation(ctx, in.ConversationID)
	if err == repository.ErrConversationNotFound {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(in.SenderID) {
		return nil, ErrNotParticipant
	}

	msg, err := messaging.NewMessage(messaging.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Body:           in.Body,
		MsgType:        in.MsgType,
	})
	if err != nil {
		return nil, err
	}

	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id
	return msg, nil
}
