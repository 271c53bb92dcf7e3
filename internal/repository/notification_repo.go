package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vireo.social/vireo/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "username", "avatar")
		}).
		Find(&notifications).Error
	return notifications, err
}
