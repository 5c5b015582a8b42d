package repositories

import (
	"encoding/json"
	"time"

	"github.com/waymark-app/waymark-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GrowthWindow is the trailing lookback used by growth analytics.
const GrowthWindow = 30 * 24 * time.Hour

// ActivityRepository defines the read side of the board activity log. The
// log is append-only: there is deliberately no update or delete operation.
// Writes happen through recordActivity inside the transaction of the
// mutation they describe.
type ActivityRepository interface {
	Record(boardID, actorID uint, activityType string, metadata map[string]any) error
	ListByBoard(boardID uint, activityType string, limit, offset int) ([]models.BoardActivity, error)
	CountsSince(boardID uint, since time.Time) ([]models.ActivityCount, error)
	TopContributors(boardID uint, limit int) ([]models.Contributor, error)
}

// PostgresActivityRepository implements ActivityRepository for PostgreSQL
type PostgresActivityRepository struct {
	db *gorm.DB
}

// NewPostgresActivityRepository creates a new PostgresActivityRepository
func NewPostgresActivityRepository(db *gorm.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

// recordActivity appends one activity row using the supplied handle, which
// may be a transaction so that the log entry commits or rolls back together
// with the mutation it describes. It performs no business-rule validation;
// callers only invoke it after their own mutation succeeded.
func recordActivity(tx *gorm.DB, boardID, actorID uint, activityType string, metadata map[string]any) error {
	var raw datatypes.JSON
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		raw = datatypes.JSON(b)
	}
	entry := models.BoardActivity{
		BoardID:      boardID,
		ActorID:      actorID,
		ActivityType: activityType,
		Metadata:     raw,
	}
	return tx.Create(&entry).Error
}

// Record appends a standalone activity row outside any caller transaction
func (r *PostgresActivityRepository) Record(boardID, actorID uint, activityType string, metadata map[string]any) error {
	return recordActivity(r.db, boardID, actorID, activityType, metadata)
}

// ListByBoard returns the reverse-chronological activity feed of a board,
// optionally filtered by type.
func (r *PostgresActivityRepository) ListByBoard(boardID uint, activityType string, limit, offset int) ([]models.BoardActivity, error) {
	q := r.db.Preload("Actor").Where("board_id = ?", boardID)
	if activityType != "" {
		q = q.Where("activity_type = ?", activityType)
	}
	var entries []models.BoardActivity
	err := q.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, err
}

// CountsSince returns per-type activity counts within a trailing window
func (r *PostgresActivityRepository) CountsSince(boardID uint, since time.Time) ([]models.ActivityCount, error) {
	var counts []models.ActivityCount
	err := r.db.Model(&models.BoardActivity{}).
		Select("activity_type, COUNT(*) AS count").
		Where("board_id = ? AND created_at >= ?", boardID, since).
		Group("activity_type").
		Scan(&counts).Error
	return counts, err
}

// TopContributors tallies PIN_ADDED entries by actor, most active first
func (r *PostgresActivityRepository) TopContributors(boardID uint, limit int) ([]models.Contributor, error) {
	var contributors []models.Contributor
	err := r.db.Table("board_activities").
		Select("board_activities.actor_id AS user_id, users.username AS username, COUNT(*) AS pins_added").
		Joins("JOIN users ON users.id = board_activities.actor_id").
		Where("board_activities.board_id = ? AND board_activities.activity_type = ?", boardID, models.ActivityPinAdded).
		Group("board_activities.actor_id, users.username").
		Order("pins_added DESC").
		Limit(limit).
		Scan(&contributors).Error
	return contributors, err
}
