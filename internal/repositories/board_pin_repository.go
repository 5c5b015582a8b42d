package repositories

import (
	"fmt"

	"github.com/waymark-app/waymark-backend/internal/models"
	"gorm.io/gorm"
)

// BoardPinRepository defines the interface for board-pin link operations
type BoardPinRepository interface {
	GetBoardPin(boardID, pinID uint) (*models.BoardPin, error)
	ListBoardPins(boardID uint) ([]models.BoardPin, error)
	AddPinToBoard(boardPin *models.BoardPin, pin *models.Pin, actorID uint) error
	RemovePinFromBoard(boardPin *models.BoardPin, pin *models.Pin, actorID uint) error
	UpdateBoardPin(boardPin *models.BoardPin) error
	Reorder(boardID uint, pinIDs []uint) error
	MostPopularPin(boardID uint) (*models.Pin, error)
}

// PostgresBoardPinRepository implements BoardPinRepository for PostgreSQL
type PostgresBoardPinRepository struct {
	db *gorm.DB
}

// NewPostgresBoardPinRepository creates a new PostgresBoardPinRepository
func NewPostgresBoardPinRepository(db *gorm.DB) *PostgresBoardPinRepository {
	return &PostgresBoardPinRepository{db: db}
}

// GetBoardPin retrieves the link row for a (board, pin) pair
func (r *PostgresBoardPinRepository) GetBoardPin(boardID, pinID uint) (*models.BoardPin, error) {
	var bp models.BoardPin
	if err := r.db.Where("board_id = ? AND pin_id = ?", boardID, pinID).First(&bp).Error; err != nil {
		return nil, err
	}
	return &bp, nil
}

// ListBoardPins returns a board's pins in manual sort order
func (r *PostgresBoardPinRepository) ListBoardPins(boardID uint) ([]models.BoardPin, error) {
	var pins []models.BoardPin
	err := r.db.Preload("Pin").Preload("Pin.Author").Preload("Pin.Images").Preload("Pin.Tags").
		Where("board_id = ?", boardID).
		Order("position ASC").
		Find(&pins).Error
	return pins, err
}

// nextPosition returns max(position)+1 within a board, or 0 for an empty
// board. Positions are never compacted on removal.
func nextPosition(tx *gorm.DB, boardID uint) (int, error) {
	var maxPos *int
	err := tx.Model(&models.BoardPin{}).Where("board_id = ?", boardID).
		Select("MAX(position)").Scan(&maxPos).Error
	if err != nil {
		return 0, err
	}
	if maxPos == nil {
		return 0, nil
	}
	return *maxPos + 1, nil
}

// AddPinToBoard links a pin to a board at the tail position, bumps the
// board's cached pin count and appends PIN_ADDED, all in one transaction.
func (r *PostgresBoardPinRepository) AddPinToBoard(boardPin *models.BoardPin, pin *models.Pin, actorID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return addPinToBoard(tx, boardPin, pin, actorID)
	})
}

// addPinToBoard is the transaction body, shared with pin creation when the
// new pin is linked to a board in the same transaction.
func addPinToBoard(tx *gorm.DB, boardPin *models.BoardPin, pin *models.Pin, actorID uint) error {
	pos, err := nextPosition(tx, boardPin.BoardID)
	if err != nil {
		return err
	}
	boardPin.Position = pos
	if err := tx.Create(boardPin).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.Board{}).Where("id = ?", boardPin.BoardID).
		UpdateColumn("pin_count", gorm.Expr("pin_count + 1")).Error; err != nil {
		return err
	}
	return recordActivity(tx, boardPin.BoardID, actorID, models.ActivityPinAdded, map[string]any{
		"pin_id":    pin.ID,
		"pin_title": pin.Title,
	})
}

// RemovePinFromBoard unlinks a pin, decrements the cached pin count and
// appends PIN_REMOVED. Remaining positions are left untouched.
func (r *PostgresBoardPinRepository) RemovePinFromBoard(boardPin *models.BoardPin, pin *models.Pin, actorID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(boardPin).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Board{}).Where("id = ?", boardPin.BoardID).
			UpdateColumn("pin_count", gorm.Expr("pin_count - 1")).Error; err != nil {
			return err
		}
		return recordActivity(tx, boardPin.BoardID, actorID, models.ActivityPinRemoved, map[string]any{
			"pin_id":    pin.ID,
			"pin_title": pin.Title,
		})
	})
}

// UpdateBoardPin persists relevance/notes changes on a link row
func (r *PostgresBoardPinRepository) UpdateBoardPin(boardPin *models.BoardPin) error {
	return r.db.Save(boardPin).Error
}

// Reorder assigns canonical positions 0..n-1 following the submitted pin id
// sequence, in one transaction. Every submitted id must already be linked to
// the board.
func (r *PostgresBoardPinRepository) Reorder(boardID uint, pinIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, pinID := range pinIDs {
			res := tx.Model(&models.BoardPin{}).
				Where("board_id = ? AND pin_id = ?", boardID, pinID).
				Update("position", i)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("pin %d is not on board %d", pinID, boardID)
			}
		}
		return nil
	})
}

// MostPopularPin returns the board pin with the highest like+save total,
// ties broken by earliest manual position so the result is deterministic.
func (r *PostgresBoardPinRepository) MostPopularPin(boardID uint) (*models.Pin, error) {
	var pin models.Pin
	err := r.db.Table("pins").
		Select("pins.*").
		Joins("JOIN board_pins ON board_pins.pin_id = pins.id").
		Where("board_pins.board_id = ?", boardID).
		Order("(pins.like_count + pins.save_count) DESC, board_pins.position ASC").
		Limit(1).
		Scan(&pin).Error
	if err != nil {
		return nil, err
	}
	if pin.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &pin, nil
}
