package repositories

import (
	"fmt"
	"testing"

	"github.com/waymark-app/waymark-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory sqlite database with the full schema.
// Queries in this package stay portable (no postgres-only SQL) so the same
// code paths run in tests and production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// One connection, so every query sees the same :memory: database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Board{},
		&models.BoardMember{},
		&models.Pin{},
		&models.PinImage{},
		&models.Tag{},
		&models.PinLike{},
		&models.SavedPin{},
		&models.BoardPin{},
		&models.BoardActivity{},
		&models.BoardComment{},
		&models.CommentReaction{},
	)
	if err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		FirebaseUID: "uid-" + username,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func createTestBoard(t *testing.T, db *gorm.DB, owner *models.User, visibility string) *models.Board {
	t.Helper()
	board := &models.Board{
		Name:       "Trip to " + fmt.Sprint(owner.ID),
		OwnerID:    owner.ID,
		Visibility: visibility,
	}
	if err := NewPostgresBoardRepository(db).CreateBoard(board); err != nil {
		t.Fatalf("create board: %v", err)
	}
	return board
}

func createTestPin(t *testing.T, db *gorm.DB, author *models.User, title string, likeCount int64) *models.Pin {
	t.Helper()
	pin := &models.Pin{
		UserID:    author.ID,
		Title:     title,
		Location:  "Lisbon, Portugal",
		LikeCount: likeCount,
	}
	if err := db.Create(pin).Error; err != nil {
		t.Fatalf("create pin %s: %v", title, err)
	}
	return pin
}
