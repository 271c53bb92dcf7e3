package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxStatusLength is the character limit enforced on status and reply content.
const MaxStatusLength = 250

type Status struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Content    string    `gorm:"size:250;not null" json:"content"`
	Attachment *string   `gorm:"type:text" json:"attachment,omitempty"`

	Comments int `gorm:"default:0" json:"comments"`
	Likes    int `gorm:"default:0" json:"likes"`
	Views    int `gorm:"default:0" json:"views"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_status_created_at,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Status) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

// StatusReply has the same shape as Status plus the parent reference.
// Replies are counted independently from top-level statuses.
type StatusReply struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StatusID   uuid.UUID `gorm:"type:uuid;not null;index" json:"status_id"`
	AuthorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Content    string    `gorm:"size:250;not null" json:"content"`
	Attachment *string   `gorm:"type:text" json:"attachment,omitempty"`

	Comments int `gorm:"default:0" json:"comments"`
	Likes    int `gorm:"default:0" json:"likes"`
	Views    int `gorm:"default:0" json:"views"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *StatusReply) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
