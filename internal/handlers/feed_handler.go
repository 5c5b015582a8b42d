package handlers

import (
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/waymark-app/waymark-backend/internal/feed"
	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
)

// FeedHandler composes the paginated, filterable, rankable discovery feed
type FeedHandler struct {
	pinRepository    repositories.PinRepository
	followRepository repositories.FollowRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(pinRepo repositories.PinRepository, followRepo repositories.FollowRepository) *FeedHandler {
	return &FeedHandler{
		pinRepository:    pinRepo,
		followRepository: followRepo,
	}
}

// RegisterFeedRoutes registers the feed route on the optional-auth group:
// anonymous users get the unpersonalized feed.
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// FeedPin is a pin annotated with the viewer-specific flags
type FeedPin struct {
	models.Pin
	IsFromFollowedUser bool `json:"is_from_followed_user"`
	IsLiked            bool `json:"is_liked"`
	IsSaved            bool `json:"is_saved"`
}

func feedFiltersFromQuery(c echo.Context) repositories.FeedFilters {
	sortBy := c.QueryParam("sortBy")
	switch sortBy {
	case repositories.SortPopular, repositories.SortTrending:
	default:
		sortBy = repositories.SortRecent
	}
	return repositories.FeedFilters{
		Category:  c.QueryParam("category"),
		CostLevel: c.QueryParam("costLevel"),
		Tag:       c.QueryParam("tag"),
		Location:  c.QueryParam("location"),
		SortBy:    sortBy,
	}
}

// GetFeed returns one offset-paginated feed page. For an authenticated user
// on the default recent sort, the fetched page is re-ranked in place by the
// personalization score; the re-rank never changes which items the page
// contains.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}
	skip := (page - 1) * limit

	filters := feedFiltersFromQuery(c)

	// Page and total count are independent queries; fetch them concurrently.
	type countResult struct {
		total int64
		err   error
	}
	countCh := make(chan countResult, 1)
	go func() {
		total, err := h.pinRepository.CountPins(filters)
		countCh <- countResult{total, err}
	}()

	pins, err := h.pinRepository.ListPins(filters, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	count := <-countCh
	if count.err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, count.err.Error())
	}

	items, err := h.annotate(pins, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if currentUserID != 0 && filters.SortBy == repositories.SortRecent {
		rerank(items, time.Now())
	}

	totalCount := count.total
	totalPages := int(math.Ceil(float64(totalCount) / float64(limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"pins": items,
		"pagination": echo.Map{
			"page":       page,
			"limit":      limit,
			"totalCount": totalCount,
			"totalPages": totalPages,
			"hasMore":    int64(skip+len(items)) < totalCount,
		},
	})
}

// annotate attaches the viewer-specific flags to a fetched page
func (h *FeedHandler) annotate(pins []models.Pin, currentUserID uint) ([]FeedPin, error) {
	items := make([]FeedPin, len(pins))
	for i, p := range pins {
		items[i] = FeedPin{Pin: p}
	}
	if currentUserID == 0 {
		return items, nil
	}

	pinIDs := make([]uint, len(pins))
	for i, p := range pins {
		pinIDs[i] = p.ID
	}

	followingIDs, err := h.followRepository.GetFollowingIDs(currentUserID)
	if err != nil {
		return nil, err
	}
	followed := make(map[uint]bool, len(followingIDs))
	for _, id := range followingIDs {
		followed[id] = true
	}

	liked, err := h.pinRepository.LikedPinIDs(currentUserID, pinIDs)
	if err != nil {
		return nil, err
	}
	saved, err := h.pinRepository.SavedPinIDs(currentUserID, pinIDs)
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i].IsFromFollowedUser = followed[items[i].UserID]
		items[i].IsLiked = liked[items[i].ID]
		items[i].IsSaved = saved[items[i].ID]
	}
	return items, nil
}

// rerank sorts an already-fetched page by the composite personalization
// score, descending. Stable, so equal scores keep the fetch order.
func rerank(items []FeedPin, now time.Time) {
	score := func(it FeedPin) float64 {
		return feed.Score(it.LikeCount, it.CreatedAt, feed.Signals{
			FromFollowedUser: it.IsFromFollowedUser,
			Liked:            it.IsLiked,
		}, now)
	}
	sort.SliceStable(items, func(a, b int) bool { return score(items[a]) > score(items[b]) })
}
