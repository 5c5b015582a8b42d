package repositories

import (
	"strings"
	"time"

	"github.com/waymark-app/waymark-backend/internal/models"
	"gorm.io/gorm"
)

// Feed sort modes.
const (
	SortRecent   = "recent"
	SortPopular  = "popular"
	SortTrending = "trending"
)

// TrendingWindow is the trailing window the trending sort is restricted to.
const TrendingWindow = 7 * 24 * time.Hour

// FeedFilters are the optional, AND-combined feed filters plus the sort
// mode.
type FeedFilters struct {
	Category  string
	CostLevel string
	Tag       string // case-insensitive exact match against the pin's tag set
	Location  string // case-insensitive substring
	AuthorID  uint
	Query     string // free-text over title/description
	SortBy    string // recent (default), popular, trending
	Now       time.Time
}

// PinRepository defines the interface for pin data operations
type PinRepository interface {
	CreatePin(pin *models.Pin, imageURLs, tagNames []string, board *models.Board) error
	GetPinByID(id uint) (*models.Pin, error)
	ListPins(filters FeedFilters, offset, limit int) ([]models.Pin, error)
	CountPins(filters FeedFilters) (int64, error)
	ListPinsAfter(filters FeedFilters, cursorID uint, limit int) ([]models.Pin, error)
	LikePin(pinID, userID uint) error
	UnlikePin(pinID, userID uint) error
	SavePin(pinID, userID uint) error
	UnsavePin(pinID, userID uint) error
	HasUserLikedPin(pinID, userID uint) (bool, error)
	LikedPinIDs(userID uint, pinIDs []uint) (map[uint]bool, error)
	SavedPinIDs(userID uint, pinIDs []uint) (map[uint]bool, error)
}

// PostgresPinRepository implements PinRepository for PostgreSQL
type PostgresPinRepository struct {
	db *gorm.DB
}

// NewPostgresPinRepository creates a new PostgresPinRepository
func NewPostgresPinRepository(db *gorm.DB) *PostgresPinRepository {
	return &PostgresPinRepository{db: db}
}

// CreatePin creates a pin together with its ordered images and tags, and
// optionally links it to a board, all in one transaction.
func (r *PostgresPinRepository) CreatePin(pin *models.Pin, imageURLs, tagNames []string, board *models.Board) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pin).Error; err != nil {
			return err
		}

		for i, url := range imageURLs {
			img := models.PinImage{PinID: pin.ID, URL: url, Position: i}
			if err := tx.Create(&img).Error; err != nil {
				return err
			}
			pin.Images = append(pin.Images, img)
		}

		for _, name := range tagNames {
			tag, err := findOrCreateTag(tx, name)
			if err != nil {
				return err
			}
			if err := tx.Model(pin).Association("Tags").Append(tag); err != nil {
				return err
			}
		}

		if board != nil {
			bp := models.BoardPin{BoardID: board.ID, PinID: pin.ID}
			return addPinToBoard(tx, &bp, pin, pin.UserID)
		}
		return nil
	})
}

// findOrCreateTag matches tags case-insensitively so "Food" and "food"
// stay one tag.
func findOrCreateTag(tx *gorm.DB, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	var tag models.Tag
	err := tx.Where("LOWER(name) = LOWER(?)", name).First(&tag).Error
	if err == nil {
		return &tag, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	tag = models.Tag{Name: name}
	if err := tx.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetPinByID retrieves a pin with author, images and tags preloaded
func (r *PostgresPinRepository) GetPinByID(id uint) (*models.Pin, error) {
	var pin models.Pin
	err := r.db.Preload("Author").Preload("Images").Preload("Tags").First(&pin, id).Error
	if err != nil {
		return nil, err
	}
	return &pin, nil
}

// buildFeedQuery translates FeedFilters into a query. Trending narrows to
// the trailing window before sorting; popular and trending share the
// (like_count DESC, created_at DESC) total order.
func (r *PostgresPinRepository) buildFeedQuery(f FeedFilters) *gorm.DB {
	q := r.db.Model(&models.Pin{})

	if f.Category != "" {
		q = q.Where("pins.category = ?", f.Category)
	}
	if f.CostLevel != "" {
		q = q.Where("pins.cost_level = ?", f.CostLevel)
	}
	if f.AuthorID != 0 {
		q = q.Where("pins.user_id = ?", f.AuthorID)
	}
	if f.Tag != "" {
		q = q.Joins("JOIN pin_tags ON pin_tags.pin_id = pins.id").
			Joins("JOIN tags ON tags.id = pin_tags.tag_id").
			Where("LOWER(tags.name) = LOWER(?)", f.Tag)
	}
	if f.Location != "" {
		q = q.Where("LOWER(pins.location) LIKE LOWER(?)", "%"+f.Location+"%")
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		q = q.Where("LOWER(pins.title) LIKE LOWER(?) OR LOWER(pins.description) LIKE LOWER(?)", pattern, pattern)
	}
	if f.SortBy == SortTrending {
		q = q.Where("pins.created_at >= ?", f.now().Add(-TrendingWindow))
	}
	return q
}

func (f FeedFilters) now() time.Time {
	if f.Now.IsZero() {
		return time.Now()
	}
	return f.Now
}

func orderClause(sortBy string) string {
	switch sortBy {
	case SortPopular, SortTrending:
		return "pins.like_count DESC, pins.created_at DESC"
	default:
		return "pins.created_at DESC, pins.id DESC"
	}
}

// ListPins returns one offset-paginated feed page
func (r *PostgresPinRepository) ListPins(f FeedFilters, offset, limit int) ([]models.Pin, error) {
	var pins []models.Pin
	err := r.buildFeedQuery(f).
		Preload("Author").Preload("Images").Preload("Tags").
		Order(orderClause(f.SortBy)).
		Offset(offset).Limit(limit).
		Find(&pins).Error
	return pins, err
}

// CountPins returns the total count matching the filters
func (r *PostgresPinRepository) CountPins(f FeedFilters) (int64, error) {
	var count int64
	err := r.buildFeedQuery(f).Count(&count).Error
	return count, err
}

// ListPinsAfter returns one cursor-paginated page. cursorID is the id of
// the last item of the previous page (0 for the first page); the caller
// fetches limit+1 and pops the overflow item as the next cursor. Keyset
// predicates keep pages stable under concurrent inserts.
func (r *PostgresPinRepository) ListPinsAfter(f FeedFilters, cursorID uint, limit int) ([]models.Pin, error) {
	q := r.buildFeedQuery(f).Preload("Author").Preload("Images").Preload("Tags")

	if cursorID != 0 {
		switch f.SortBy {
		case SortPopular, SortTrending:
			var after models.Pin
			if err := r.db.Select("id", "like_count").First(&after, cursorID).Error; err != nil {
				return nil, err
			}
			q = q.Where("pins.like_count < ? OR (pins.like_count = ? AND pins.id < ?)",
				after.LikeCount, after.LikeCount, cursorID)
		default:
			q = q.Where("pins.id < ?", cursorID)
		}
	}

	order := "pins.id DESC"
	if f.SortBy == SortPopular || f.SortBy == SortTrending {
		order = "pins.like_count DESC, pins.id DESC"
	}

	var pins []models.Pin
	err := q.Order(order).Limit(limit).Find(&pins).Error
	return pins, err
}

// LikePin records a like and bumps the cached counter atomically
func (r *PostgresPinRepository) LikePin(pinID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		like := models.PinLike{PinID: pinID, UserID: userID}
		if err := tx.Create(&like).Error; err != nil {
			return err
		}
		return tx.Model(&models.Pin{}).Where("id = ?", pinID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
}

// UnlikePin removes a like and decrements the cached counter atomically
func (r *PostgresPinRepository) UnlikePin(pinID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// hard delete, so the unique (pin,user) index allows a re-like
		res := tx.Unscoped().Where("pin_id = ? AND user_id = ?", pinID, userID).Delete(&models.PinLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Pin{}).Where("id = ?", pinID).
			UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
	})
}

// SavePin bookmarks a pin and bumps the cached counter atomically
func (r *PostgresPinRepository) SavePin(pinID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		saved := models.SavedPin{PinID: pinID, UserID: userID}
		if err := tx.Create(&saved).Error; err != nil {
			return err
		}
		return tx.Model(&models.Pin{}).Where("id = ?", pinID).
			UpdateColumn("save_count", gorm.Expr("save_count + 1")).Error
	})
}

// UnsavePin removes a bookmark and decrements the cached counter atomically
func (r *PostgresPinRepository) UnsavePin(pinID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Unscoped().Where("pin_id = ? AND user_id = ?", pinID, userID).Delete(&models.SavedPin{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Pin{}).Where("id = ?", pinID).
			UpdateColumn("save_count", gorm.Expr("save_count - 1")).Error
	})
}

// HasUserLikedPin checks whether userID has liked pinID
func (r *PostgresPinRepository) HasUserLikedPin(pinID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.PinLike{}).Where("pin_id = ? AND user_id = ?", pinID, userID).Count(&count).Error
	return count > 0, err
}

// LikedPinIDs returns which of pinIDs the user has liked, as a set
func (r *PostgresPinRepository) LikedPinIDs(userID uint, pinIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if len(pinIDs) == 0 {
		return result, nil
	}
	var likes []models.PinLike
	if err := r.db.Where("user_id = ? AND pin_id IN ?", userID, pinIDs).Find(&likes).Error; err != nil {
		return nil, err
	}
	for _, l := range likes {
		result[l.PinID] = true
	}
	return result, nil
}

// SavedPinIDs returns which of pinIDs the user has saved, as a set
func (r *PostgresPinRepository) SavedPinIDs(userID uint, pinIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool)
	if len(pinIDs) == 0 {
		return result, nil
	}
	var saved []models.SavedPin
	if err := r.db.Where("user_id = ? AND pin_id IN ?", userID, pinIDs).Find(&saved).Error; err != nil {
		return nil, err
	}
	for _, s := range saved {
		result[s.PinID] = true
	}
	return result, nil
}
