package repositories

import (
	"github.com/waymark-app/waymark-backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for board discussion operations.
// There is no delete: comments stay as part of the board's record.
type CommentRepository interface {
	CreateComment(comment *models.BoardComment) error
	GetCommentByID(id uint) (*models.BoardComment, error)
	ListByBoard(boardID uint) ([]models.BoardComment, error)
	SetPinned(comment *models.BoardComment, pinned bool) error
	AddReaction(reaction *models.CommentReaction) error
	RemoveReaction(commentID, userID uint, emoji string) error
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateComment inserts a comment; a top-level comment also bumps the
// board's cached comment count and appends COMMENT_ADDED, atomically.
// Replies update the counter but stay out of the activity feed.
func (r *PostgresCommentRepository) CreateComment(comment *models.BoardComment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Board{}).Where("id = ?", comment.BoardID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
			return err
		}
		if comment.ParentID != nil {
			return nil
		}
		return recordActivity(tx, comment.BoardID, comment.UserID, models.ActivityCommentAdded, map[string]any{
			"comment_id": comment.ID,
		})
	})
}

// GetCommentByID retrieves a comment by id
func (r *PostgresCommentRepository) GetCommentByID(id uint) (*models.BoardComment, error) {
	var comment models.BoardComment
	if err := r.db.Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByBoard returns a board's comments, pinned first, then oldest first,
// with users and reactions preloaded. Threading (one level) is assembled by
// the handler.
func (r *PostgresCommentRepository) ListByBoard(boardID uint) ([]models.BoardComment, error) {
	var comments []models.BoardComment
	err := r.db.Preload("User").Preload("Reactions").
		Where("board_id = ?", boardID).
		Order("pinned DESC, created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// SetPinned flags or unflags a comment
func (r *PostgresCommentRepository) SetPinned(comment *models.BoardComment, pinned bool) error {
	return r.db.Model(comment).Update("pinned", pinned).Error
}

// AddReaction records a user x emoji reaction, unique per pair
func (r *PostgresCommentRepository) AddReaction(reaction *models.CommentReaction) error {
	return r.db.Create(reaction).Error
}

// RemoveReaction removes a previously recorded reaction
func (r *PostgresCommentRepository) RemoveReaction(commentID, userID uint, emoji string) error {
	res := r.db.Where("comment_id = ? AND user_id = ? AND emoji = ?", commentID, userID, emoji).
		Delete(&models.CommentReaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
