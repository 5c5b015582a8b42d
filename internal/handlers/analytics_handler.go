package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
	"gorm.io/gorm"
)

// AnalyticsHandler serves the board activity tab and the derived analytics
// summary. Everything here is read-only and computed on demand.
type AnalyticsHandler struct {
	boardRepository    repositories.BoardRepository
	memberRepository   repositories.MemberRepository
	boardPinRepository repositories.BoardPinRepository
	activityRepository repositories.ActivityRepository
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(boardRepo repositories.BoardRepository, memberRepo repositories.MemberRepository, boardPinRepo repositories.BoardPinRepository, activityRepo repositories.ActivityRepository) *AnalyticsHandler {
	return &AnalyticsHandler{
		boardRepository:    boardRepo,
		memberRepository:   memberRepo,
		boardPinRepository: boardPinRepo,
		activityRepository: activityRepo,
	}
}

// RegisterAnalyticsRoutes registers activity and analytics routes on the
// optional-auth group; visibility rules decide access per board.
func (h *AnalyticsHandler) RegisterAnalyticsRoutes(public *echo.Group) {
	public.GET("/boards/:id/activity", h.GetActivity)
	public.GET("/boards/:id/analytics", h.GetAnalytics)
}

// GetActivity returns the reverse-chronological activity feed, optionally
// filtered by type.
func (h *AnalyticsHandler) GetActivity(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanView {
		return forbidden(getUserIDFromContext(c))
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 100 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	entries, err := h.activityRepository.ListByBoard(board.ID, c.QueryParam("type"), limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"activity": entries})
}

// GrowthData is the 30-day activity summary. The three counts overlap
// freely; each is tallied independently.
type GrowthData struct {
	PinsAdded     int64 `json:"pins_added"`
	MembersAdded  int64 `json:"members_added"`
	CommentsAdded int64 `json:"comments_added"`
	WindowDays    int   `json:"window_days"`
}

// GetAnalytics returns the derived board summary: most popular pin, top
// contributors, 30-day growth and the raw engagement counters.
func (h *AnalyticsHandler) GetAnalytics(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanView {
		return forbidden(getUserIDFromContext(c))
	}

	var mostPopular *models.Pin
	pin, err := h.boardPinRepository.MostPopularPin(board.ID)
	switch err {
	case nil:
		mostPopular = pin
	case gorm.ErrRecordNotFound:
		// empty board
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	contributors, err := h.activityRepository.TopContributors(board.ID, 5)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	since := time.Now().Add(-repositories.GrowthWindow)
	counts, err := h.activityRepository.CountsSince(board.ID, since)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	growth := GrowthData{WindowDays: 30}
	for _, bucket := range counts {
		switch bucket.ActivityType {
		case models.ActivityPinAdded:
			growth.PinsAdded = bucket.Count
		case models.ActivityMemberAdded:
			growth.MembersAdded = bucket.Count
		case models.ActivityCommentAdded:
			growth.CommentsAdded = bucket.Count
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"mostPopularPin":  mostPopular,
		"topContributors": contributors,
		"growthData":      growth,
		"engagement":      board.Engagement(),
	})
}
