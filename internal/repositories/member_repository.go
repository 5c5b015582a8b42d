package repositories

import (
	"github.com/waymark-app/waymark-backend/internal/models"
	"gorm.io/gorm"
)

// MemberRepository defines the interface for board membership operations
type MemberRepository interface {
	GetMember(boardID, userID uint) (*models.BoardMember, error)
	GetMemberByID(id uint) (*models.BoardMember, error)
	GetMemberRole(boardID, userID uint) (string, error)
	ListMembers(boardID uint) ([]models.BoardMember, error)
	AddMember(member *models.BoardMember, actorID uint) error
	ChangeRole(member *models.BoardMember, newRole string, actorID uint) error
	RemoveMember(member *models.BoardMember, actorID uint) error
}

// PostgresMemberRepository implements MemberRepository for PostgreSQL
type PostgresMemberRepository struct {
	db *gorm.DB
}

// NewPostgresMemberRepository creates a new PostgresMemberRepository
func NewPostgresMemberRepository(db *gorm.DB) *PostgresMemberRepository {
	return &PostgresMemberRepository{db: db}
}

// GetMember retrieves the membership row for a (board, user) pair
func (r *PostgresMemberRepository) GetMember(boardID, userID uint) (*models.BoardMember, error) {
	var member models.BoardMember
	if err := r.db.Where("board_id = ? AND user_id = ?", boardID, userID).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// GetMemberByID retrieves a membership row by its own id, with the user
// preloaded.
func (r *PostgresMemberRepository) GetMemberByID(id uint) (*models.BoardMember, error) {
	var member models.BoardMember
	if err := r.db.Preload("User").First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// GetMemberRole returns the role of userID on boardID, or "" when no
// membership row exists. Access resolution treats "" as non-member.
func (r *PostgresMemberRepository) GetMemberRole(boardID, userID uint) (string, error) {
	if userID == 0 {
		return "", nil
	}
	member, err := r.GetMember(boardID, userID)
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

// ListMembers returns a board's member list with users preloaded
func (r *PostgresMemberRepository) ListMembers(boardID uint) ([]models.BoardMember, error) {
	var members []models.BoardMember
	err := r.db.Preload("User").Where("board_id = ?", boardID).Order("created_at ASC").Find(&members).Error
	return members, err
}

// AddMember inserts a membership row and its MEMBER_ADDED entry atomically
func (r *PostgresMemberRepository) AddMember(member *models.BoardMember, actorID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return recordActivity(tx, member.BoardID, actorID, models.ActivityMemberAdded, map[string]any{
			"member_id": member.UserID,
			"username":  member.User.Username,
			"role":      member.Role,
		})
	})
}

// ChangeRole updates a member's role and logs MEMBER_ROLE_CHANGED
func (r *PostgresMemberRepository) ChangeRole(member *models.BoardMember, newRole string, actorID uint) error {
	oldRole := member.Role
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(member).Update("role", newRole).Error; err != nil {
			return err
		}
		return recordActivity(tx, member.BoardID, actorID, models.ActivityMemberRoleChanged, map[string]any{
			"member_id": member.UserID,
			"username":  member.User.Username,
			"old_role":  oldRole,
			"new_role":  newRole,
		})
	})
}

// RemoveMember deletes a membership row and logs MEMBER_REMOVED. The removed
// user's handle is denormalized into the entry metadata since the row is
// gone afterwards.
func (r *PostgresMemberRepository) RemoveMember(member *models.BoardMember, actorID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(member).Error; err != nil {
			return err
		}
		return recordActivity(tx, member.BoardID, actorID, models.ActivityMemberRemoved, map[string]any{
			"member_id": member.UserID,
			"username":  member.User.Username,
		})
	})
}
