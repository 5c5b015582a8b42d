package handlers

import (
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
	"gorm.io/gorm"
)

func newAuthHandler(db *gorm.DB) *AuthHandler {
	return NewAuthHandler(repositories.NewPostgresUserRepository(db), nil)
}

func TestResolveUserByProviderUID(t *testing.T) {
	db := newTestDB(t)
	h := newAuthHandler(db)
	existing := createUser(t, db, "ana")

	resolved, err := h.resolveUser(existing.FirebaseUID, "other@example.com", "Someone Else")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.ID != existing.ID {
		t.Fatalf("resolved user %d, want %d", resolved.ID, existing.ID)
	}
}

// An existing account matched by email gets the provider UID linked in
// place instead of a duplicate account.
func TestResolveUserLinksByEmail(t *testing.T) {
	db := newTestDB(t)
	h := newAuthHandler(db)
	existing := createUser(t, db, "ana")

	resolved, err := h.resolveUser("fresh-uid", existing.Email, "Ana Pereira")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.ID != existing.ID {
		t.Fatalf("resolved user %d, want %d", resolved.ID, existing.ID)
	}
	var stored models.User
	if err := db.First(&stored, existing.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.FirebaseUID != "fresh-uid" {
		t.Fatalf("provider uid not linked: %q", stored.FirebaseUID)
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("users = %d, want 1 (no duplicate account)", count)
	}
}

func TestResolveUserProvisionsLazily(t *testing.T) {
	db := newTestDB(t)
	h := newAuthHandler(db)

	resolved, err := h.resolveUser("uid-new", "Maria.Silva+travel@example.com", "Maria Silva")
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Username != "maria.silvatravel" {
		t.Fatalf("derived handle = %q", resolved.Username)
	}
	if resolved.FirstName != "Maria" || resolved.LastName != "Silva" {
		t.Fatalf("name split = %q %q", resolved.FirstName, resolved.LastName)
	}

	// the same local part from a different identity gets a numeric suffix
	second, err := h.resolveUser("uid-new-2", "maria.silvatravel@elsewhere.example", "")
	if err != nil {
		t.Fatal(err)
	}
	if second.Username != "maria.silvatravel1" {
		t.Fatalf("deduplicated handle = %q", second.Username)
	}
}

func TestGenerateJWTRoundTrip(t *testing.T) {
	db := newTestDB(t)
	h := newAuthHandler(db)
	user := createUser(t, db, "ana")

	signed, err := h.generateJWT(user)
	if err != nil {
		t.Fatal(err)
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("parse: %v, valid=%v", err, token != nil && token.Valid)
	}
	if claims.UserID != user.ID || claims.Username != "ana" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("token issued without an expiry")
	}
}
