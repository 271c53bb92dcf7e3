package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vireo.social/vireo/internal/model"
	"vireo.social/vireo/internal/repository"
	"vireo.social/vireo/internal/service"
	"vireo.social/vireo/pkg/apperror"
)

func newGraphService(db *gorm.DB) service.GraphService {
	return service.NewGraphService(
		repository.NewFollowRepository(db),
		repository.NewLikeRepository(db),
		repository.NewUserRepository(db),
		service.NewNotificationService(repository.NewNotificationRepository(db), nil),
	)
}

func reloadUser(t *testing.T, db *gorm.DB, id uuid.UUID) *model.User {
	t.Helper()
	var user model.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	return &user
}

func TestToggleFollowRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	follower := seedUser(t, db, "follower")
	author := seedUser(t, db, "author")
	graph := newGraphService(db)

	action, err := graph.ToggleFollow(ctx, follower.ID, author.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if action != service.ActionFollow {
		t.Fatalf("expected %q, got %q", service.ActionFollow, action)
	}

	if got := reloadUser(t, db, author.ID).Followers; got != 1 {
		t.Fatalf("expected author followers 1, got %d", got)
	}
	if got := reloadUser(t, db, follower.ID).Following; got != 1 {
		t.Fatalf("expected follower following 1, got %d", got)
	}

	action, err = graph.ToggleFollow(ctx, follower.ID, author.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if action != service.ActionUnfollow {
		t.Fatalf("expected %q, got %q", service.ActionUnfollow, action)
	}

	if got := reloadUser(t, db, author.ID).Followers; got != 0 {
		t.Fatalf("expected author followers back to 0, got %d", got)
	}
	if got := reloadUser(t, db, follower.ID).Following; got != 0 {
		t.Fatalf("expected follower following back to 0, got %d", got)
	}

	var edges int64
	if err := db.Model(&model.Follow{}).Count(&edges).Error; err != nil {
		t.Fatalf("count edges: %v", err)
	}
	if edges != 0 {
		t.Fatalf("expected no follow edges after round trip, got %d", edges)
	}
}

func TestToggleFollowSelf(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "narcissus")

	_, err := newGraphService(db).ToggleFollow(context.Background(), user.ID, user.ID)
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected validation error for self-follow, got %v", err)
	}
}

func TestToggleFollowNotifiesAuthor(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	follower := seedUser(t, db, "follower")
	author := seedUser(t, db, "author")

	if _, err := newGraphService(db).ToggleFollow(ctx, follower.ID, author.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	var notifications []model.Notification
	if err := db.Where("user_id = ?", author.ID).Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifications))
	}
	if want := "@follower followed you"; notifications[0].Message != want {
		t.Fatalf("expected message %q, got %q", want, notifications[0].Message)
	}
}

func TestToggleLikeRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	liker := seedUser(t, db, "liker")
	status := seedStatus(t, db, author.ID, "post", time.Now().UTC())
	graph := newGraphService(db)

	liked, err := graph.ToggleLike(ctx, status.ID, liker.ID, author.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !liked {
		t.Fatalf("expected liked=true after first toggle")
	}

	var reloaded model.Status
	if err := db.First(&reloaded, "id = ?", status.ID).Error; err != nil {
		t.Fatalf("reload status: %v", err)
	}
	if reloaded.Likes != 1 {
		t.Fatalf("expected likes 1, got %d", reloaded.Likes)
	}

	liked, err = graph.ToggleLike(ctx, status.ID, liker.ID, author.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if liked {
		t.Fatalf("expected liked=false after second toggle")
	}

	if err := db.First(&reloaded, "id = ?", status.ID).Error; err != nil {
		t.Fatalf("reload status: %v", err)
	}
	if reloaded.Likes != 0 {
		t.Fatalf("expected likes back to 0, got %d", reloaded.Likes)
	}
}

func TestToggleLikeOnReply(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	liker := seedUser(t, db, "liker")
	status := seedStatus(t, db, author.ID, "post", time.Now().UTC())

	reply := &model.StatusReply{StatusID: status.ID, AuthorID: author.ID, Content: "reply"}
	if err := db.Create(reply).Error; err != nil {
		t.Fatalf("seed reply: %v", err)
	}

	liked, err := newGraphService(db).ToggleLike(ctx, reply.ID, liker.ID, author.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !liked {
		t.Fatalf("expected liked=true")
	}

	var reloaded model.StatusReply
	if err := db.First(&reloaded, "id = ?", reply.ID).Error; err != nil {
		t.Fatalf("reload reply: %v", err)
	}
	if reloaded.Likes != 1 {
		t.Fatalf("expected reply likes 1, got %d", reloaded.Likes)
	}
}

func TestToggleLikeConcurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	liker := seedUser(t, db, "liker")
	status := seedStatus(t, db, author.ID, "post", time.Now().UTC())
	graph := newGraphService(db)

	// Each toggle flips the edge, so an even number of toggles must land back
	// on the unliked state with the counter at zero, regardless of ordering.
	const toggles = 8
	var wg sync.WaitGroup
	errs := make(chan error, toggles)
	for i := 0; i < toggles; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := graph.ToggleLike(ctx, status.ID, liker.ID, author.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent toggle: %v", err)
	}

	var edges int64
	if err := db.Model(&model.Like{}).Count(&edges).Error; err != nil {
		t.Fatalf("count edges: %v", err)
	}
	var reloaded model.Status
	if err := db.First(&reloaded, "id = ?", status.ID).Error; err != nil {
		t.Fatalf("reload status: %v", err)
	}
	if edges != 0 || reloaded.Likes != 0 {
		t.Fatalf("expected edge and counter back to zero, got edges=%d likes=%d", edges, reloaded.Likes)
	}
	if reloaded.Likes < 0 {
		t.Fatalf("likes counter went negative: %d", reloaded.Likes)
	}
}
