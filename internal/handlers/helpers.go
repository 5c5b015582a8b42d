package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/waymark-app/waymark-backend/internal/access"
	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
	"gorm.io/gorm"
)

// getUserIDFromContext returns the authenticated user id, or 0 when the
// request is anonymous.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

func paramUint(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// forbidden maps a failed capability check to the standardized status:
// 401 only when the actor is anonymous, 403 when authenticated but lacking
// the capability.
func forbidden(actorID uint) *echo.HTTPError {
	if actorID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}
	return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
}

// resolveBoardAccess loads the board from the :id route param and computes
// the acting user's capability set. Board existence is checked before any
// permission evaluation, so a missing board is always 404 regardless of who
// asks. A `share` query token can grant view-only access to SHARED boards.
func resolveBoardAccess(c echo.Context, boardRepo repositories.BoardRepository, memberRepo repositories.MemberRepository) (*models.Board, access.Decision, error) {
	boardID, err := paramUint(c, "id")
	if err != nil {
		return nil, access.Decision{}, err
	}

	board, err := boardRepo.GetBoardByID(boardID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, access.Decision{}, echo.NewHTTPError(http.StatusNotFound, "Board not found")
		}
		return nil, access.Decision{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	actorID := getUserIDFromContext(c)
	role, err := memberRepo.GetMemberRole(board.ID, actorID)
	if err != nil {
		return nil, access.Decision{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	decision := access.Resolve(board, role, actorID)
	if !decision.CanView {
		if shared := access.ResolveShareLink(board, c.QueryParam("share")); shared.CanView {
			decision.CanView = true
		}
	}
	return board, decision, nil
}
