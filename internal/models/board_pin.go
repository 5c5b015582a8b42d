package models

import "time"

// Per-board relevance classification of a pin, distinct from the pin's
// global category.
const (
	RelevanceMustVisit = "MUST_VISIT"
	RelevanceMaybe     = "MAYBE"
	RelevanceBackup    = "BACKUP"
)

// BoardPin joins a pin to a board. A pin appears in a board at most once.
// Position is assigned as max(position)+1 on insert and never compacted
// when pins are removed.
type BoardPin struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BoardID   uint      `json:"board_id" gorm:"index;uniqueIndex:idx_board_pin"`
	PinID     uint      `json:"pin_id" gorm:"index;uniqueIndex:idx_board_pin"`
	Position  int       `json:"position"`
	Relevance *string   `json:"relevance,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"-"`
	Pin       Pin       `json:"pin" gorm:"foreignKey:PinID"`
}

// AddBoardPinRequest defines the request body for adding an existing pin
// to a board
type AddBoardPinRequest struct {
	PinID     uint    `json:"pin_id" validate:"required"`
	Relevance *string `json:"relevance,omitempty" validate:"omitempty,oneof=MUST_VISIT MAYBE BACKUP"`
	Notes     string  `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// UpdateBoardPinRequest defines the request body for updating the per-board
// context of a pin
type UpdateBoardPinRequest struct {
	Relevance *string `json:"relevance,omitempty" validate:"omitempty,oneof=MUST_VISIT MAYBE BACKUP"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// ReorderBoardPinsRequest carries the full desired order of a board's pins.
// The server assigns canonical positions from the submitted sequence; the
// client never invents position values.
type ReorderBoardPinsRequest struct {
	PinIDs []uint `json:"pin_ids" validate:"required,min=1"`
}
