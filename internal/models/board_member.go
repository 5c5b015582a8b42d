package models

import "time"

// Member roles on a board, highest privilege first. RoleOwner is reserved
// for bookkeeping during ownership transfer and must never persist as a
// regular member's role; ownership is always judged against board.OwnerID.
const (
	RoleOwner      = "OWNER"
	RoleCoAdmin    = "CO_ADMIN"
	RoleCanAddPins = "CAN_ADD_PINS"
	RoleViewOnly   = "VIEW_ONLY"
)

// BoardMember joins a user to a board with a role. At most one row per
// (board, user) pair.
type BoardMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BoardID   uint      `json:"board_id" gorm:"index;uniqueIndex:idx_board_member"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_board_member"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"-"`
	User      User      `json:"user" gorm:"foreignKey:UserID"`
}

// InviteMemberRequest defines the request body for inviting a member.
// Username is either the exact unique handle or, when it contains
// whitespace, a case-insensitive "First Last" lookup.
type InviteMemberRequest struct {
	Username string `json:"username" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=CO_ADMIN CAN_ADD_PINS VIEW_ONLY"`
}

// UpdateMemberRoleRequest defines the request body for a role change.
// OWNER is deliberately not an accepted value; owner changes go through the
// transfer endpoint only.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=CO_ADMIN CAN_ADD_PINS VIEW_ONLY"`
}

// TransferOwnershipRequest defines the request body for ownership transfer
type TransferOwnershipRequest struct {
	Username string `json:"username" validate:"required"`
}
