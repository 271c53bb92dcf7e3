package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"vireo.social/vireo/internal/model"
	"vireo.social/vireo/internal/realtime"
	"vireo.social/vireo/internal/repository"
	"vireo.social/vireo/pkg/apperror"
)

// ChatService is the message store for the implicit two-party channels.
type ChatService interface {
	// OpenChannel loads the channel history (oldest first) and marks every
	// message from the other participant as read, the way a chat view does.
	OpenChannel(ctx context.Context, readerID, otherID uuid.UUID) ([]model.Message, error)
	// Send persists the message and publishes it to the realtime bus after
	// the write commits.
	Send(ctx context.Context, authorID, recipientID uuid.UUID, content string) (*model.Message, error)
	// Subscribe streams newly inserted messages for the channel shared by the
	// two users.
	Subscribe(userA, userB uuid.UUID) *realtime.Subscription
}

type chatService struct {
	messageRepo repository.MessageRepository
	hub         *realtime.Hub
}

func NewChatService(messageRepo repository.MessageRepository, hub *realtime.Hub) ChatService {
	return &chatService{
		messageRepo: messageRepo,
		hub:         hub,
	}
}

func (s *chatService) OpenChannel(ctx context.Context, readerID, otherID uuid.UUID) ([]model.Message, error) {
	channelID := DeriveChannelIDHashed(readerID, otherID)

	messages, err := s.messageRepo.ListByChannel(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading channel history: %v", apperror.ErrUpstream, err)
	}

	if err := s.messageRepo.MarkRead(ctx, channelID, readerID); err != nil {
		return nil, fmt.Errorf("%w: marking messages read: %v", apperror.ErrUpstream, err)
	}

	return messages, nil
}

func (s *chatService) Send(ctx context.Context, authorID, recipientID uuid.UUID, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: message content required", apperror.ErrValidation)
	}

	message := &model.Message{
		ChannelID:   DeriveChannelIDHashed(authorID, recipientID),
		AuthorID:    authorID,
		DeliveredTo: recipientID,
		Content:     content,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("%w: inserting message: %v", apperror.ErrUpstream, err)
	}

	s.hub.Publish(realtime.TableMessages, *message)

	return message, nil
}

func (s *chatService) Subscribe(userA, userB uuid.UUID) *realtime.Subscription {
	channelID := DeriveChannelIDHashed(userA, userB)
	return s.hub.Subscribe(realtime.TableMessages, func(event realtime.Event) bool {
		message, ok := event.Payload.(model.Message)
		return ok && message.ChannelID == channelID
	})
}
