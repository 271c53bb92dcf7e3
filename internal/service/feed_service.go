package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vireo.social/vireo/internal/model"
	"vireo.social/vireo/internal/repository"
	"vireo.social/vireo/pkg/apperror"
)

// FeedPage is one page of the feed plus the cursor for the next page.
// NextCursor is nil when the page is the last one.
type FeedPage struct {
	Status     []model.Status `json:"status"`
	NextCursor *time.Time     `json:"nextCursor"`
}

type FeedService interface {
	// GetFeed returns statuses strictly older than cursor, newest first.
	// id optionally narrows the feed to a single status.
	GetFeed(ctx context.Context, cursor *time.Time, limit int, id *uuid.UUID) (*FeedPage, error)
	// GetFollowingFeed narrows the feed to authors the user follows. An empty
	// follow set yields an empty page without touching the status table.
	GetFollowingFeed(ctx context.Context, userID uuid.UUID, cursor *time.Time, limit int) (*FeedPage, error)
}

type feedService struct {
	statusRepo repository.StatusRepository
	followRepo repository.FollowRepository
	pageSize   int
}

func NewFeedService(statusRepo repository.StatusRepository, followRepo repository.FollowRepository, pageSize int) FeedService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &feedService{
		statusRepo: statusRepo,
		followRepo: followRepo,
		pageSize:   pageSize,
	}
}

func (s *feedService) GetFeed(ctx context.Context, cursor *time.Time, limit int, id *uuid.UUID) (*FeedPage, error) {
	return s.page(ctx, cursor, limit, nil, id)
}

func (s *feedService) GetFollowingFeed(ctx context.Context, userID uuid.UUID, cursor *time.Time, limit int) (*FeedPage, error) {
	authorIDs, err := s.followRepo.ListAuthorIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching follow set: %v", apperror.ErrUpstream, err)
	}

	if len(authorIDs) == 0 {
		return &FeedPage{Status: []model.Status{}}, nil
	}

	return s.page(ctx, cursor, limit, authorIDs, nil)
}

// page fetches limit+1 rows: the extra row only signals that another page
// exists and is never returned. The next cursor is the created_at of the last
// returned row. A row deleted at the cursor boundary between fetches can
// shift later pages; that is accepted behavior for a feed.
func (s *feedService) page(ctx context.Context, cursor *time.Time, limit int, authorIDs []uuid.UUID, id *uuid.UUID) (*FeedPage, error) {
	if limit <= 0 {
		limit = s.pageSize
	}

	statuses, err := s.statusRepo.FindPage(ctx, cursor, limit+1, authorIDs, id)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching feed page: %v", apperror.ErrUpstream, err)
	}

	hasMore := len(statuses) > limit
	if hasMore {
		statuses = statuses[:limit]
	}

	page := &FeedPage{Status: statuses}
	if hasMore && len(statuses) > 0 {
		last := statuses[len(statuses)-1].CreatedAt
		page.NextCursor = &last
	}
	return page, nil
}

// ParseCursor accepts the created_at of the previous page's last row. The
// fractional-second part is dropped before parsing, matching how cursors were
// issued historically.
func ParseCursor(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	trimmed, _, _ := strings.Cut(raw, ".")
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid cursor %q", apperror.ErrValidation, raw)
}
