package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vireo.social/vireo/internal/model"
)

type StatusRepository interface {
	Create(ctx context.Context, status *model.Status) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// FindPage returns statuses strictly older than cursor (when set), newest
	// first with id as tie-break, limited to limit rows. authorIDs, when
	// non-empty, restricts the page to those authors. id, when set, restricts
	// the page to a single status.
	FindPage(ctx context.Context, cursor *time.Time, limit int, authorIDs []uuid.UUID, id *uuid.UUID) ([]model.Status, error)
	FindByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]model.Status, error)
	RecentContents(ctx context.Context, limit int) ([]string, error)
	// IncrementViews bumps the views counter by one; the id may name a status
	// or a reply.
	IncrementViews(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id, authorID uuid.UUID) error

	CreateReply(ctx context.Context, reply *model.StatusReply) error
	FindReplies(ctx context.Context, statusID uuid.UUID, limit int) ([]model.StatusReply, error)
	FindRepliesByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]model.StatusReply, error)
}

type statusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &statusRepository{db: db}
}

func (r *statusRepository) Create(ctx context.Context, status *model.Status) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *statusRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Status{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *statusRepository) FindPage(ctx context.Context, cursor *time.Time, limit int, authorIDs []uuid.UUID, id *uuid.UUID) ([]model.Status, error) {
	var statuses []model.Status

	query := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where("created_at < ?", *cursor)
	}
	if len(authorIDs) > 0 {
		query = query.Where("author_id IN ?", authorIDs)
	}
	if id != nil {
		query = query.Where("id = ?", *id)
	}

	if err := query.Find(&statuses).Error; err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *statusRepository) FindByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]model.Status, error) {
	var statuses []model.Status
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&statuses).Error
	return statuses, err
}

func (r *statusRepository) RecentContents(ctx context.Context, limit int) ([]string, error) {
	var contents []string
	err := r.db.WithContext(ctx).Model(&model.Status{}).
		Order("created_at DESC").
		Limit(limit).
		Pluck("content", &contents).Error
	return contents, err
}

func (r *statusRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Status{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.StatusReply{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *statusRepository) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&model.Status{}).Error
}

// CreateReply inserts the reply and bumps the parent's comments counter in
// the same transaction, so the counter cannot drift from the reply rows.
func (r *statusRepository) CreateReply(ctx context.Context, reply *model.StatusReply) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&model.Status{}).
			Where("id = ?", reply.StatusID).
			UpdateColumn("comments", gorm.Expr("comments + 1")).Error
	})
}

func (r *statusRepository) FindReplies(ctx context.Context, statusID uuid.UUID, limit int) ([]model.StatusReply, error) {
	var replies []model.StatusReply
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("status_id = ?", statusID).
		Order("created_at DESC").
		Limit(limit).
		Find(&replies).Error
	return replies, err
}

func (r *statusRepository) FindRepliesByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]model.StatusReply, error) {
	var replies []model.StatusReply
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&replies).Error
	return replies, err
}
