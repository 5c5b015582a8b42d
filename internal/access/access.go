// Package access centralizes the board permission model. Every board-scoped
// endpoint resolves a Decision here instead of re-deriving owner/role checks
// inline, so the visibility and role rules live in exactly one place.
package access

import "github.com/waymark-app/waymark-backend/internal/models"

// Decision is the computed capability set of an acting user on a board.
type Decision struct {
	CanView   bool   `json:"can_view"`
	CanEdit   bool   `json:"can_edit"`
	CanManage bool   `json:"can_manage"`
	Role      string `json:"role,omitempty"`
}

// Resolve computes the Decision for actorID on board. memberRole is the
// actor's role from the board_members table, or "" when no membership row
// exists. actorID == 0 means anonymous.
//
// Ownership is always judged against board.OwnerID; OWNER-role membership
// rows never persist outside the transfer transaction, so the member table
// is irrelevant to the owner check.
//
//	visibility | owner | member (any role) | anonymous
//	PUBLIC     | view  | view              | view
//	PRIVATE    | view  | -                 | -
//	SHARED     | view  | view              | -
func Resolve(board *models.Board, memberRole string, actorID uint) Decision {
	isOwner := actorID != 0 && board.OwnerID == actorID
	isMember := actorID != 0 && memberRole != ""

	var d Decision
	switch {
	case isOwner:
		d.Role = models.RoleOwner
	case isMember:
		d.Role = memberRole
	}

	switch board.Visibility {
	case models.VisibilityPublic:
		d.CanView = true
	case models.VisibilityShared:
		d.CanView = isOwner || isMember
	default: // PRIVATE
		d.CanView = isOwner
	}

	d.CanEdit = isOwner || memberRole == models.RoleCoAdmin || memberRole == models.RoleCanAddPins
	d.CanManage = isOwner || memberRole == models.RoleCoAdmin
	return d
}

// ResolveShareLink grants view-only access to a SHARED board through its
// share token. The token never grants edit or manage.
func ResolveShareLink(board *models.Board, token string) Decision {
	if token == "" || board.Visibility != models.VisibilityShared || board.ShareToken != token {
		return Decision{}
	}
	return Decision{CanView: true, Role: models.RoleViewOnly}
}
