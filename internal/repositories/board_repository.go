package repositories

import (
	"errors"

	"github.com/waymark-app/waymark-backend/internal/models"
	"gorm.io/gorm"
)

// BoardRepository defines the interface for board data operations
type BoardRepository interface {
	CreateBoard(board *models.Board) error
	GetBoardByID(id uint) (*models.Board, error)
	UpdateBoard(board *models.Board, actorID uint, activityType string) error
	DeleteBoard(id uint) error
	IncrementViewCount(id uint) error
	ListBoardsForUser(userID uint) ([]models.Board, error)
	TransferOwnership(board *models.Board, target *models.User) error
}

// PostgresBoardRepository implements BoardRepository for PostgreSQL
type PostgresBoardRepository struct {
	db *gorm.DB
}

// NewPostgresBoardRepository creates a new PostgresBoardRepository
func NewPostgresBoardRepository(db *gorm.DB) *PostgresBoardRepository {
	return &PostgresBoardRepository{db: db}
}

// CreateBoard creates a board and its CREATED activity entry atomically
func (r *PostgresBoardRepository) CreateBoard(board *models.Board) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(board).Error; err != nil {
			return err
		}
		return recordActivity(tx, board.ID, board.OwnerID, models.ActivityCreated, map[string]any{
			"name": board.Name,
		})
	})
}

// GetBoardByID retrieves a board with its owner preloaded
func (r *PostgresBoardRepository) GetBoardByID(id uint) (*models.Board, error) {
	var board models.Board
	if err := r.db.Preload("Owner").First(&board, id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// UpdateBoard persists board field changes and logs the matching activity
// (SETTINGS_UPDATED or COVER_CHANGED) in the same transaction.
func (r *PostgresBoardRepository) UpdateBoard(board *models.Board, actorID uint, activityType string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(board).Error; err != nil {
			return err
		}
		return recordActivity(tx, board.ID, actorID, activityType, nil)
	})
}

// DeleteBoard removes a board together with its memberships and pin links.
// Activity rows are kept: the audit trail outlives the board.
func (r *PostgresBoardRepository) DeleteBoard(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("board_id = ?", id).Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.BoardPin{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", id).Delete(&models.BoardComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Board{}, id).Error
	})
}

// IncrementViewCount bumps the monotonic view counter
func (r *PostgresBoardRepository) IncrementViewCount(id uint) error {
	return r.db.Model(&models.Board{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// ListBoardsForUser returns boards the user owns or is a member of
func (r *PostgresBoardRepository) ListBoardsForUser(userID uint) ([]models.Board, error) {
	var boards []models.Board
	err := r.db.Preload("Owner").
		Where("owner_id = ? OR id IN (?)", userID,
			r.db.Table("board_members").Select("board_id").Where("user_id = ?", userID),
		).
		Order("updated_at DESC").
		Find(&boards).Error
	return boards, err
}

// TransferOwnership hands the board to target in one atomic transaction:
// set the new owner, drop the target's membership row (the owner is never
// also a member), demote the previous owner to CO_ADMIN, and append the
// OWNERSHIP_TRANSFERRED entry. All four steps commit or none do.
func (r *PostgresBoardRepository) TransferOwnership(board *models.Board, target *models.User) error {
	prevOwnerID := board.OwnerID
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Board{}).Where("id = ?", board.ID).
			Update("owner_id", target.ID).Error; err != nil {
			return err
		}

		if err := tx.Where("board_id = ? AND user_id = ?", board.ID, target.ID).
			Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}

		var existing models.BoardMember
		findErr := tx.Where("board_id = ? AND user_id = ?", board.ID, prevOwnerID).
			First(&existing).Error
		switch {
		case findErr == nil:
			if err := tx.Model(&existing).Update("role", models.RoleCoAdmin).Error; err != nil {
				return err
			}
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			member := models.BoardMember{BoardID: board.ID, UserID: prevOwnerID, Role: models.RoleCoAdmin}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		default:
			return findErr
		}

		return recordActivity(tx, board.ID, prevOwnerID, models.ActivityOwnershipTransferred, map[string]any{
			"previous_owner_id": prevOwnerID,
			"new_owner_id":      target.ID,
			"new_owner":         target.Username,
		})
	})
	if err != nil {
		return err
	}
	board.OwnerID = target.ID
	return nil
}
