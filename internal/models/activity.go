package models

import (
	"time"

	"gorm.io/datatypes"
)

// Tracked board activity types.
const (
	ActivityCreated              = "CREATED"
	ActivityPinAdded             = "PIN_ADDED"
	ActivityPinRemoved           = "PIN_REMOVED"
	ActivityMemberAdded          = "MEMBER_ADDED"
	ActivityMemberRemoved        = "MEMBER_REMOVED"
	ActivityMemberRoleChanged    = "MEMBER_ROLE_CHANGED"
	ActivityCommentAdded         = "COMMENT_ADDED"
	ActivityOwnershipTransferred = "OWNERSHIP_TRANSFERRED"
	ActivitySettingsUpdated      = "SETTINGS_UPDATED"
	ActivityCoverChanged         = "COVER_CHANGED"
)

// BoardActivity is one entry of a board's append-only audit trail. Rows are
// never updated or deleted; both the activity tab and analytics derive from
// them.
type BoardActivity struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	BoardID      uint           `json:"board_id" gorm:"index"`
	ActorID      uint           `json:"actor_id" gorm:"index"`
	Actor        User           `json:"actor" gorm:"foreignKey:ActorID"`
	ActivityType string         `json:"activity_type" gorm:"index"`
	Metadata     datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`
}

// ActivityCount is one bucket of a grouped-by-type activity count.
type ActivityCount struct {
	ActivityType string `json:"activity_type"`
	Count        int64  `json:"count"`
}

// Contributor is one row of a board's top-contributors ranking.
type Contributor struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	PinsAdded int64  `json:"pins_added"`
}
