package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Username     string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Avatar       *string   `gorm:"type:text" json:"avatar,omitempty"`
	Banner       *string   `gorm:"type:text" json:"banner,omitempty"`
	Biography    *string   `gorm:"type:text" json:"biography,omitempty"`
	Website      *string   `gorm:"type:text" json:"website,omitempty"`

	// Denormalized counters, kept consistent with the follows table by the
	// graph service's transactional toggles.
	Followers int `gorm:"default:0" json:"followers"`
	Following int `gorm:"default:0" json:"following"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	return
}
