package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/google/uuid"
)

// Post is one node of a discussion. The root post of a discussion has an
// empty ReplyTreePath and IsRootPost set; every reply stores the ids of its
// ancestors as a materialized path ("3/7/" for a reply to post 7 under post
// 3). The trailing separator keeps prefixes unambiguous for variable-width
// ids, and because '/' sorts below every digit, ordering by
// (reply_tree_path, post_id) yields a pre-order traversal with each node's
// descendants contiguous and immediately after it.
type Post struct {
	ID              uint       `gorm:"primaryKey" json:"postId"`
	DiscussionID    string     `gorm:"size:36;not null;index" json:"discussionId"`
	IsRootPost      bool       `gorm:"not null;default:false" json:"isRootPost"`
	ParentPostID    *uint      `gorm:"index" json:"parentPostId"`
	Parent          *Post      `gorm:"foreignKey:ParentPostID" json:"-"`
	ReplyTreePath   string     `gorm:"type:text;not null;default:'';index:idx_posts_path" json:"-"`
	AuthorID        uuid.UUID  `gorm:"type:uuid;not null" json:"authorId"`
	Author          User       `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	ImageID         uint       `gorm:"not null" json:"imageId"`
	Image           Image      `gorm:"foreignKey:ImageID" json:"image,omitempty"`
	PostedDate      time.Time  `gorm:"autoCreateTime" json:"postedDate"`
	IsDeleted       bool       `gorm:"not null;default:false" json:"isDeleted"`
	IsHidden        bool       `gorm:"not null;default:false" json:"isHidden"`
	IsInappropriate bool       `gorm:"not null;default:false" json:"isInappropriate"`
	Reactions       []Reaction `gorm:"foreignKey:PostID" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.IsRootPost != (p.ParentPostID == nil) {
		return fmt.Errorf("post must have a parent unless it is the discussion root")
	}
	return nil
}

// ChildPathPrefix is the ReplyTreePath every direct reply to p is created
// with, and the prefix shared by all of p's descendants.
func (p *Post) ChildPathPrefix() string {
	return fmt.Sprintf("%s%d/", p.ReplyTreePath, p.ID)
}

// IsArchived reports whether the post has left the active state.
func (p *Post) IsArchived() bool {
	return p.IsDeleted || p.IsHidden
}

// SetDeleted archives the post with its content removed. Only valid for
// posts nothing else references (no replies, no reactions).
func (p *Post) SetDeleted() {
	p.IsDeleted = true
}

// Hide archives the post while keeping it as a placeholder: descendants
// embed its id in their paths and must not be orphaned.
func (p *Post) Hide() {
	p.IsHidden = true
}
