package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vireo.social/vireo/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	// ListByChannel returns every message in the channel, oldest first.
	ListByChannel(ctx context.Context, channelID string) ([]model.Message, error)
	// MarkRead flips read_state for all messages in the channel not authored
	// by readerID.
	MarkRead(ctx context.Context, channelID string, readerID uuid.UUID) error
	CountUnread(ctx context.Context, channelID string, readerID uuid.UUID) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) ListByChannel(ctx context.Context, channelID string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepository) MarkRead(ctx context.Context, channelID string, readerID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Message{}).
		Where("channel_id = ? AND author_id <> ? AND read_state = ?", channelID, readerID, false).
		Update("read_state", true).Error
}

func (r *messageRepository) CountUnread(ctx context.Context, channelID string, readerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("channel_id = ? AND author_id <> ? AND read_state = ?", channelID, readerID, false).
		Count(&count).Error
	return count, err
}
