package models

import (
	"time"

	"gorm.io/gorm"
)

// Pin is a single place/destination record with media and metadata.
type Pin struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index"`
	Author      User      `json:"author" gorm:"foreignKey:UserID"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Category    string    `json:"category,omitempty"`
	CostLevel   string    `json:"cost_level,omitempty"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"-"`

	Images []PinImage `json:"images" gorm:"foreignKey:PinID"`
	Tags   []Tag      `json:"tags" gorm:"many2many:pin_tags"`

	// Cached aggregates, maintained transactionally with the rows they count.
	LikeCount    int64 `json:"like_count"`
	SaveCount    int64 `json:"save_count"`
	CommentCount int64 `json:"comment_count"`
}

// PinImage is one entry of a pin's ordered image list.
type PinImage struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	PinID    uint   `json:"-" gorm:"index"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex"`
}

// PinLike represents a like on a pin
type PinLike struct {
	gorm.Model
	PinID  uint `json:"pin_id" gorm:"index;uniqueIndex:idx_pin_like"`
	UserID uint `json:"user_id" gorm:"index;uniqueIndex:idx_pin_like"`
}

// SavedPin represents a pin bookmarked by a user
type SavedPin struct {
	gorm.Model
	UserID uint `json:"user_id" gorm:"index;uniqueIndex:idx_saved_pin"`
	PinID  uint `json:"pin_id" gorm:"index;uniqueIndex:idx_saved_pin"`
}

// CreatePinRequest defines the request body for creating a new pin.
// BoardID, when present, links the new pin to that board in the same
// transaction.
type CreatePinRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=150"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    string   `json:"location" validate:"required,min=1,max=200"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	Category    string   `json:"category,omitempty" validate:"omitempty,max=50"`
	CostLevel   string   `json:"cost_level,omitempty" validate:"omitempty,max=20"`
	ImageURLs   []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	Tags        []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=40"`
	BoardID     *uint    `json:"board_id,omitempty"`
}
