package models

import "gorm.io/gorm"

// Board visibility tiers.
const (
	VisibilityPrivate = "PRIVATE" // owner only
	VisibilityPublic  = "PUBLIC"  // anyone, including anonymous
	VisibilityShared  = "SHARED"  // owner and invited members (plus share-link viewers)
)

// Board is a user-owned, optionally collaborative collection of pins.
// A board has exactly one owner at all times; the owner never appears in
// the board_members table.
type Board struct {
	gorm.Model    `json:"-"`
	ID            uint   `json:"id" gorm:"primaryKey"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	OwnerID       uint   `json:"owner_id" gorm:"index"`
	Owner         User   `json:"owner" gorm:"foreignKey:OwnerID"`
	Visibility    string `json:"visibility" gorm:"default:PRIVATE"`
	Category      string `json:"category,omitempty"`
	Theme         string `json:"theme,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
	ShareToken    string `json:"-" gorm:"index"` // minted when the board becomes SHARED
	Archived      bool   `json:"archived"`

	// Cached aggregates. Recomputable from source rows; the ones this core
	// mutates are updated in the same transaction as the row that changes
	// them.
	ViewCount     int64 `json:"view_count"`
	LikeCount     int64 `json:"like_count"`
	SaveCount     int64 `json:"save_count"`
	FollowerCount int64 `json:"follower_count"`
	CommentCount  int64 `json:"comment_count"`
	PinCount      int64 `json:"pin_count"`
}

// CreateBoardRequest defines the request body for creating a board
type CreateBoardRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=100"`
	Description   string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Visibility    string `json:"visibility,omitempty" validate:"omitempty,oneof=PRIVATE PUBLIC SHARED"`
	Category      string `json:"category,omitempty" validate:"omitempty,max=50"`
	Theme         string `json:"theme,omitempty" validate:"omitempty,max=50"`
	CoverImageURL string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
}

// UpdateBoardRequest defines the request body for updating a board.
// All fields optional; pointers distinguish "absent" from zero values.
type UpdateBoardRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Visibility    *string `json:"visibility,omitempty" validate:"omitempty,oneof=PRIVATE PUBLIC SHARED"`
	Category      *string `json:"category,omitempty" validate:"omitempty,max=50"`
	Theme         *string `json:"theme,omitempty" validate:"omitempty,max=50"`
	CoverImageURL *string `json:"cover_image_url,omitempty" validate:"omitempty,url"`
	Archived      *bool   `json:"archived,omitempty"`
}

// Engagement is the raw counter snapshot returned by board analytics.
type Engagement struct {
	Views     int64 `json:"views"`
	Likes     int64 `json:"likes"`
	Followers int64 `json:"followers"`
	Saves     int64 `json:"saves"`
	Comments  int64 `json:"comments"`
	Pins      int64 `json:"pins"`
}

func (b *Board) Engagement() Engagement {
	return Engagement{
		Views:     b.ViewCount,
		Likes:     b.LikeCount,
		Followers: b.FollowerCount,
		Saves:     b.SaveCount,
		Comments:  b.CommentCount,
		Pins:      b.PinCount,
	}
}
