package models

import "time"

// BoardComment is a discussion entry on a board. ParentID supports one level
// of quoting; replies never nest further. Comments are not hard-deleted.
type BoardComment struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	BoardID   uint              `json:"board_id" gorm:"index"`
	UserID    uint              `json:"user_id" gorm:"index"`
	User      User              `json:"user" gorm:"foreignKey:UserID"`
	ParentID  *uint             `json:"parent_id,omitempty" gorm:"index"`
	Content   string            `json:"content"`
	Pinned    bool              `json:"pinned"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"-"`
	Reactions []CommentReaction `json:"reactions" gorm:"foreignKey:CommentID"`
	Replies   []BoardComment    `json:"replies,omitempty" gorm:"-"`
}

// CommentReaction is a user x emoji reaction on a comment, unique per pair.
type CommentReaction struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	CommentID uint   `json:"comment_id" gorm:"index;uniqueIndex:idx_comment_reaction"`
	UserID    uint   `json:"user_id" gorm:"uniqueIndex:idx_comment_reaction"`
	Emoji     string `json:"emoji" gorm:"uniqueIndex:idx_comment_reaction"`
}

// CreateCommentRequest defines the request body for posting a board comment
type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,min=1,max=2000"`
	ParentID *uint  `json:"parent_id,omitempty"`
}

// ReactionRequest defines the request body for adding or removing a reaction
type ReactionRequest struct {
	Emoji string `json:"emoji" validate:"required,min=1,max=16"`
}
