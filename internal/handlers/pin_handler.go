package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/waymark-app/waymark-backend/internal/access"
	"github.com/waymark-app/waymark-backend/internal/feed"
	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
	"gorm.io/gorm"
)

// PinHandler handles pin CRUD, the cursor-paginated listing, likes and
// saves.
type PinHandler struct {
	pinRepository    repositories.PinRepository
	boardRepository  repositories.BoardRepository
	memberRepository repositories.MemberRepository
}

// NewPinHandler creates a new PinHandler
func NewPinHandler(pinRepo repositories.PinRepository, boardRepo repositories.BoardRepository, memberRepo repositories.MemberRepository) *PinHandler {
	return &PinHandler{
		pinRepository:    pinRepo,
		boardRepository:  boardRepo,
		memberRepository: memberRepo,
	}
}

// RegisterPinRoutes registers pin routes
func (h *PinHandler) RegisterPinRoutes(public, protected *echo.Group) {
	public.GET("/pins", h.ListPins)
	public.GET("/pins/:id", h.GetPin)
	protected.POST("/pins", h.CreatePin)
	protected.POST("/pins/:id/like", h.LikePin)
	protected.DELETE("/pins/:id/like", h.UnlikePin)
	protected.POST("/pins/:id/save", h.SavePin)
	protected.DELETE("/pins/:id/save", h.UnsavePin)
}

// CreatePin creates a pin with its images and tags; when board_id is given
// the pin is linked to that board in the same transaction, which requires
// edit rights there.
func (h *PinHandler) CreatePin(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)

	var req models.CreatePinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var board *models.Board
	if req.BoardID != nil {
		var err error
		board, err = h.boardRepository.GetBoardByID(*req.BoardID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return echo.NewHTTPError(http.StatusNotFound, "Board not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		role, err := h.memberRepository.GetMemberRole(board.ID, currentUserID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !access.Resolve(board, role, currentUserID).CanEdit {
			return forbidden(currentUserID)
		}
	}

	pin := &models.Pin{
		UserID:      currentUserID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Category:    req.Category,
		CostLevel:   req.CostLevel,
	}
	if err := h.pinRepository.CreatePin(pin, req.ImageURLs, req.Tags, board); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, pin)
}

// GetPin retrieves a single pin
func (h *PinHandler) GetPin(c echo.Context) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return err
	}
	pin, err := h.pinRepository.GetPinByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Pin not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pin)
}

// ListPins is the cursor-paginated pin listing. The handler fetches
// limit+1 rows and pops the overflow item as the next cursor.
func (h *PinHandler) ListPins(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > 50 {
		limit = 20
	}

	var cursorID uint
	if cursor := c.QueryParam("cursor"); cursor != "" {
		var err error
		cursorID, err = feed.DecodeCursor(cursor)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid cursor")
		}
	}

	sortBy := c.QueryParam("sortBy")
	switch sortBy {
	case repositories.SortPopular, repositories.SortTrending:
	default:
		sortBy = repositories.SortRecent
	}

	filters := repositories.FeedFilters{
		Category: c.QueryParam("category"),
		Query:    strings.TrimSpace(c.QueryParam("q")),
		SortBy:   sortBy,
	}
	if userID := c.QueryParam("userId"); userID != "" {
		id, err := strconv.ParseUint(userID, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid userId")
		}
		filters.AuthorID = uint(id)
	}

	pins, err := h.pinRepository.ListPinsAfter(filters, cursorID, limit+1)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var nextCursor string
	if len(pins) > limit {
		pins = pins[:limit]
		nextCursor = feed.EncodeCursor(pins[len(pins)-1].ID)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"pins":       pins,
		"nextCursor": nextCursor,
	})
}

// LikePin likes a pin
func (h *PinHandler) LikePin(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	pin, httpErr := h.loadPin(c)
	if httpErr != nil {
		return httpErr
	}

	liked, err := h.pinRepository.HasUserLikedPin(pin.ID, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if liked {
		return echo.NewHTTPError(http.StatusConflict, "Pin already liked")
	}
	if err := h.pinRepository.LikePin(pin.ID, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": true})
}

// UnlikePin removes a like
func (h *PinHandler) UnlikePin(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	pin, httpErr := h.loadPin(c)
	if httpErr != nil {
		return httpErr
	}

	if err := h.pinRepository.UnlikePin(pin.ID, currentUserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Like not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": false})
}

// SavePin bookmarks a pin
func (h *PinHandler) SavePin(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	pin, httpErr := h.loadPin(c)
	if httpErr != nil {
		return httpErr
	}

	if err := h.pinRepository.SavePin(pin.ID, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusConflict, "Pin already saved")
	}
	return c.JSON(http.StatusOK, echo.Map{"saved": true})
}

// UnsavePin removes a bookmark
func (h *PinHandler) UnsavePin(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	pin, httpErr := h.loadPin(c)
	if httpErr != nil {
		return httpErr
	}

	if err := h.pinRepository.UnsavePin(pin.ID, currentUserID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Saved pin not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"saved": false})
}

func (h *PinHandler) loadPin(c echo.Context) (*models.Pin, error) {
	id, err := paramUint(c, "id")
	if err != nil {
		return nil, err
	}
	pin, err := h.pinRepository.GetPinByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, echo.NewHTTPError(http.StatusNotFound, "Pin not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return pin, nil
}
