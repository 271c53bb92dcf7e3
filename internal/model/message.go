package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message belongs to an implicit channel shared by two participants. The
// channel itself is never persisted; ChannelID is derived from the pair of
// user IDs (see service.DeriveChannelIDHashed).
type Message struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChannelID   string    `gorm:"size:64;not null;index" json:"channel_id"`
	AuthorID    uuid.UUID `gorm:"type:uuid;not null" json:"author"`
	DeliveredTo uuid.UUID `gorm:"type:uuid;not null" json:"delivered_to"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	ReadState   bool      `gorm:"default:false" json:"read_state"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID, err = uuid.NewV7()
	}
	return
}
