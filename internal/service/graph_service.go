package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"vireo.social/vireo/internal/model"
	"vireo.social/vireo/internal/repository"
	"vireo.social/vireo/pkg/apperror"
)

const (
	ActionFollow   = "follow"
	ActionUnfollow = "unfollow"
)

// GraphService owns the toggled social edges: follows and likes. Both toggles
// are transactional in the repository layer, so concurrent double-invocation
// settles on a single consistent edge state and matching counters.
type GraphService interface {
	// ToggleFollow flips the follow edge and reports "follow" or "unfollow".
	ToggleFollow(ctx context.Context, followerID, authorID uuid.UUID) (string, error)
	// ToggleLike flips the like edge and reports whether the like now exists.
	ToggleLike(ctx context.Context, statusID, userID, authorID uuid.UUID) (bool, error)
	GetFollowers(ctx context.Context, authorID uuid.UUID) ([]model.Follow, error)
}

type graphService struct {
	followRepo    repository.FollowRepository
	likeRepo      repository.LikeRepository
	userRepo      repository.UserRepository
	notifications NotificationService
}

func NewGraphService(followRepo repository.FollowRepository, likeRepo repository.LikeRepository, userRepo repository.UserRepository, notifications NotificationService) GraphService {
	return &graphService{
		followRepo:    followRepo,
		likeRepo:      likeRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

func (s *graphService) ToggleFollow(ctx context.Context, followerID, authorID uuid.UUID) (string, error) {
	if followerID == authorID {
		return "", fmt.Errorf("%w: cannot follow yourself", apperror.ErrValidation)
	}

	followed, err := s.followRepo.Toggle(ctx, followerID, authorID)
	if err != nil {
		return "", fmt.Errorf("%w: toggling follow: %v", apperror.ErrUpstream, err)
	}

	if !followed {
		return ActionUnfollow, nil
	}

	s.notifyFollow(ctx, followerID, authorID)
	return ActionFollow, nil
}

func (s *graphService) ToggleLike(ctx context.Context, statusID, userID, authorID uuid.UUID) (bool, error) {
	liked, err := s.likeRepo.Toggle(ctx, statusID, userID, authorID)
	if err != nil {
		return false, fmt.Errorf("%w: toggling like: %v", apperror.ErrUpstream, err)
	}

	if liked && authorID != userID {
		s.notifyLike(ctx, userID, authorID)
	}
	return liked, nil
}

func (s *graphService) GetFollowers(ctx context.Context, authorID uuid.UUID) ([]model.Follow, error) {
	follows, err := s.followRepo.ListFollowers(ctx, authorID, 10)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching followers: %v", apperror.ErrUpstream, err)
	}
	return follows, nil
}

// Notifications are best-effort; a failure never rolls back the edge write.

func (s *graphService) notifyFollow(ctx context.Context, followerID, authorID uuid.UUID) {
	if s.notifications == nil {
		return
	}
	message := "Someone followed you"
	if follower, err := s.userRepo.FindByID(ctx, followerID); err == nil {
		message = fmt.Sprintf("@%s followed you", follower.Username)
	}
	_ = s.notifications.Create(ctx, authorID, message)
}

func (s *graphService) notifyLike(ctx context.Context, userID, authorID uuid.UUID) {
	if s.notifications == nil {
		return
	}
	message := "Someone liked your status"
	if user, err := s.userRepo.FindByID(ctx, userID); err == nil {
		message = fmt.Sprintf("@%s liked your status", user.Username)
	}
	_ = s.notifications.Create(ctx, authorID, message)
}
