package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
	"gorm.io/gorm"
)

// AuthHandler resolves an external authenticated session to an internal
// user record, provisioning one lazily on first sight. Identity itself
// (passwords, sessions, MFA) lives with the external provider.
type AuthHandler struct {
	userRepository repositories.UserRepository
	firebaseAuth   *auth.Client
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, firebaseAuthClient *auth.Client) *AuthHandler {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "supersecretjwtkey"
	}
	return &AuthHandler{
		userRepository: userRepo,
		firebaseAuth:   firebaseAuthClient,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/firebase-login", h.FirebaseLogin)
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies an external ID token, resolves (or lazily creates)
// the internal user, and issues a local JWT.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.firebaseAuth.VerifyIDToken(context.Background(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid ID token")
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)

	user, err := h.resolveUser(token.UID, email, name)
	if err != nil {
		c.Logger().Errorf("identity resolution failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve user")
	}

	localJWT, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": localJWT, "user": user})
}

// resolveUser finds the internal record for an external identity: by
// provider UID first, by email second (linking the UID), creating a fresh
// record otherwise.
func (h *AuthHandler) resolveUser(firebaseUID, email, name string) (*models.User, error) {
	user, err := h.userRepository.GetUserByFirebaseUID(firebaseUID)
	if err == nil {
		return user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if email != "" {
		user, err = h.userRepository.GetUserByEmail(email)
		if err == nil {
			user.FirebaseUID = firebaseUID
			if err := h.userRepository.UpdateUser(user); err != nil {
				return nil, err
			}
			return user, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
	}

	username, err := h.deriveUsername(email, firebaseUID)
	if err != nil {
		return nil, err
	}
	first, last, _ := strings.Cut(name, " ")
	newUser := &models.User{
		Username:    username,
		FirstName:   first,
		LastName:    strings.TrimSpace(last),
		Email:       email,
		FirebaseUID: firebaseUID,
	}
	if err := h.userRepository.CreateUser(newUser); err != nil {
		return nil, err
	}
	return newUser, nil
}

// deriveUsername builds a unique handle from the email local part,
// de-duplicating with a numeric suffix.
func (h *AuthHandler) deriveUsername(email, firebaseUID string) (string, error) {
	base, _, _ := strings.Cut(email, "@")
	base = strings.ToLower(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			return r
		default:
			return -1
		}
	}, base))
	if base == "" {
		base = "traveler_" + strings.ToLower(firebaseUID)
		if len(base) > 24 {
			base = base[:24]
		}
	}

	candidate := base
	for i := 1; ; i++ {
		taken, err := h.userRepository.UsernameExists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
}

// generateJWT generates a local JWT for a resolved user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
