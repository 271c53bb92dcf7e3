package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"vireo.social/vireo/internal/model"
	"vireo.social/vireo/internal/repository"
	"vireo.social/vireo/pkg/apperror"
)

// NotificationChannel is the redis pub/sub channel carrying a user's
// notifications to any connected websocket, on whichever instance it lives.
func NotificationChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID)
}

type NotificationService interface {
	Create(ctx context.Context, userID uuid.UUID, message string) error
	GetRecent(ctx context.Context, userID uuid.UUID) ([]model.Notification, error)
}

type notificationService struct {
	repo        repository.NotificationRepository
	redisClient *redis.Client
}

func NewNotificationService(repo repository.NotificationRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
	}
}

func (s *notificationService) Create(ctx context.Context, userID uuid.UUID, message string) error {
	notification := &model.Notification{
		UserID:  userID,
		Message: message,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("%w: inserting notification: %v", apperror.ErrUpstream, err)
	}

	// Publish after the write commits; delivery is best-effort.
	if s.redisClient != nil {
		if payload, err := json.Marshal(notification); err == nil {
			s.redisClient.Publish(ctx, NotificationChannel(userID), payload)
		}
	}

	return nil
}

func (s *notificationService) GetRecent(ctx context.Context, userID uuid.UUID) ([]model.Notification, error) {
	notifications, err := s.repo.ListRecent(ctx, userID, 10)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching notifications: %v", apperror.ErrUpstream, err)
	}
	return notifications, nil
}
