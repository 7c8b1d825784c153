package model

import (
	"time"

	"github.com/google/uuid"
)

// Reaction is one user's reaction on one post. A post with any active
// reactions can no longer be edited or fully deleted.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_unique,priority:1" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_reactions_unique,priority:2;index" json:"post_id"`
	Type      string    `gorm:"size:20;not null;uniqueIndex:idx_reactions_unique,priority:3" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
