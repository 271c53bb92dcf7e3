package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vireo.social/vireo/internal/model"
)

type LikeRepository interface {
	// Toggle flips the like edge for (statusID, userID) and adjusts the likes
	// counter on the status (or reply) row in the same transaction. It reports
	// whether the like exists after the call.
	Toggle(ctx context.Context, statusID, userID, authorID uuid.UUID) (bool, error)
	IsLiked(ctx context.Context, statusID, userID uuid.UUID) (bool, error)
	CountForStatus(ctx context.Context, statusID uuid.UUID) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, statusID, userID, authorID uuid.UUID) (bool, error) {
	var liked bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		edge := model.Like{StatusID: statusID, UserID: userID, AuthorID: authorID}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "status_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&edge)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			liked = true
			return adjustLikeCounter(tx, statusID, +1)
		}

		res = tx.Where("status_id = ? AND user_id = ?", statusID, userID).
			Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}

		liked = false
		if res.RowsAffected > 0 {
			return adjustLikeCounter(tx, statusID, -1)
		}
		return nil
	})

	return liked, err
}

// adjustLikeCounter updates the likes counter on the status row, falling back
// to the replies table when the target is a reply. Decrements are guarded so
// the counter never goes negative.
func adjustLikeCounter(tx *gorm.DB, statusID uuid.UUID, delta int) error {
	guard := tx.Model(&model.Status{}).Where("id = ?", statusID)
	if delta < 0 {
		guard = guard.Where("likes > 0")
	}
	res := guard.UpdateColumn("likes", gorm.Expr("likes + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	guard = tx.Model(&model.StatusReply{}).Where("id = ?", statusID)
	if delta < 0 {
		guard = guard.Where("likes > 0")
	}
	return guard.UpdateColumn("likes", gorm.Expr("likes + ?", delta)).Error
}

func (r *likeRepository) IsLiked(ctx context.Context, statusID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("status_id = ? AND user_id = ?", statusID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *likeRepository) CountForStatus(ctx context.Context, statusID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("status_id = ?", statusID).
		Count(&count).Error
	return count, err
}
