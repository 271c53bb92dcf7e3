package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vireo.social/vireo/internal/model"
)

type FollowRepository interface {
	// Toggle flips the follow edge for (followerID, authorID) and adjusts both
	// users' denormalized counters in the same transaction. It reports whether
	// the edge exists after the call.
	Toggle(ctx context.Context, followerID, authorID uuid.UUID) (bool, error)
	ListAuthorIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error)
	ListFollowers(ctx context.Context, authorID uuid.UUID, limit int) ([]model.Follow, error)
	IsFollowing(ctx context.Context, followerID, authorID uuid.UUID) (bool, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Toggle(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	var followed bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge := model.Follow{FollowerID: followerID, AuthorID: authorID}

		// The unique index on (follower_id, author_id) makes the insert the
		// linearization point: of two racing toggles, exactly one inserts.
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "author_id"}},
			DoNothing: true,
		}).Create(&edge)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			followed = true
			return adjustFollowCounters(tx, followerID, authorID, +1)
		}

		// Edge already present: this call is an unfollow.
		res = tx.Where("follower_id = ? AND author_id = ?", followerID, authorID).
			Delete(&model.Follow{})
		if res.Error != nil {
			return res.Error
		}

		followed = false
		if res.RowsAffected > 0 {
			return adjustFollowCounters(tx, followerID, authorID, -1)
		}
		// Lost a race against a concurrent unfollow; already in desired state.
		return nil
	})

	return followed, err
}

func adjustFollowCounters(tx *gorm.DB, followerID, authorID uuid.UUID, delta int) error {
	guard := tx.Model(&model.User{}).Where("id = ?", authorID)
	if delta < 0 {
		guard = guard.Where("followers > 0")
	}
	if err := guard.UpdateColumn("followers", gorm.Expr("followers + ?", delta)).Error; err != nil {
		return err
	}

	guard = tx.Model(&model.User{}).Where("id = ?", followerID)
	if delta < 0 {
		guard = guard.Where("following > 0")
	}
	return guard.UpdateColumn("following", gorm.Expr("following + ?", delta)).Error
}

func (r *followRepository) ListAuthorIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("author_id", &ids).Error
	return ids, err
}

func (r *followRepository) ListFollowers(ctx context.Context, authorID uuid.UUID, limit int) ([]model.Follow, error) {
	var follows []model.Follow
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at desc").
		Limit(limit).
		Preload("Follower", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "username", "avatar", "biography")
		}).
		Find(&follows).Error
	return follows, err
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND author_id = ?", followerID, authorID).
		Count(&count).Error
	return count > 0, err
}
