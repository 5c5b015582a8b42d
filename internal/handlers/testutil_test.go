package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/waymark-app/waymark-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a throwaway in-memory database migrated to the full
// schema. One connection, so every query sees the same :memory: database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

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
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
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

// newJSONContext builds an echo context carrying an optional JSON body.
// user == nil makes the request anonymous, mirroring OptionalJWTAuth.
func newJSONContext(t *testing.T, method, target, body string, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if user != nil {
		c.Set("user", &models.JwtCustomClaims{UserID: user.ID, Username: user.Username})
	}
	return c, rec
}

func paramID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// httpStatus extracts the status a handler produced, whether it wrote a
// response or returned an *echo.HTTPError.
func httpStatus(t *testing.T, err error, rec *httptest.ResponseRecorder) int {
	t.Helper()
	if err == nil {
		return rec.Code
	}
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("handler returned a non-HTTP error: %v", err)
	}
	return he.Code
}
