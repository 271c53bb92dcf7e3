package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Follow records a directed edge: FollowerID follows AuthorID. The unique
// index over the pair is what makes the toggle race-free; the edge row is the
// source of truth for "is following".
type Follow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair" json:"-"`
	Follower   User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"follower"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follows_pair;index" json:"author"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID, err = uuid.NewV7()
	}
	return
}

// Like records that UserID liked StatusID. AuthorID denormalizes the status
// author so "likes received" queries skip a join.
type Like struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StatusID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_pair" json:"status_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_likes_pair" json:"user_id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"author"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *Like) BeforeCreate(tx *gorm.DB) (err error) {
	if l.ID == uuid.Nil {
		l.ID, err = uuid.NewV7()
	}
	return
}
