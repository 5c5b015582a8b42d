package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
)

// BoardHandler handles board CRUD requests
type BoardHandler struct {
	boardRepository    repositories.BoardRepository
	memberRepository   repositories.MemberRepository
	boardPinRepository repositories.BoardPinRepository
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(boardRepo repositories.BoardRepository, memberRepo repositories.MemberRepository, boardPinRepo repositories.BoardPinRepository) *BoardHandler {
	return &BoardHandler{
		boardRepository:    boardRepo,
		memberRepository:   memberRepo,
		boardPinRepository: boardPinRepo,
	}
}

// RegisterBoardRoutes registers board routes; reads go on the optional-auth
// group so public and share-link access work anonymously.
func (h *BoardHandler) RegisterBoardRoutes(public, protected *echo.Group) {
	public.GET("/boards/:id", h.GetBoard)
	protected.GET("/boards", h.ListMyBoards)
	protected.POST("/boards", h.CreateBoard)
	protected.PATCH("/boards/:id", h.UpdateBoard)
	protected.DELETE("/boards/:id", h.DeleteBoard)
}

// GetBoard returns a board with its members, pins and the caller's
// capability flags. Viewing bumps the monotonic view counter.
func (h *BoardHandler) GetBoard(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanView {
		return forbidden(getUserIDFromContext(c))
	}

	if err := h.boardRepository.IncrementViewCount(board.ID); err != nil {
		c.Logger().Errorf("view count increment failed for board %d: %v", board.ID, err)
	}

	members, err := h.memberRepository.ListMembers(board.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pins, err := h.boardPinRepository.ListBoardPins(board.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"board":   board,
		"members": members,
		"pins":    pins,
		"access":  decision,
	})
}

// ListMyBoards returns boards the caller owns or belongs to
func (h *BoardHandler) ListMyBoards(c echo.Context) error {
	boards, err := h.boardRepository.ListBoardsForUser(getUserIDFromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"boards": boards})
}

// CreateBoard creates a board owned by the caller
func (h *BoardHandler) CreateBoard(c echo.Context) error {
	var req models.CreateBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}

	board := &models.Board{
		Name:          req.Name,
		Description:   req.Description,
		OwnerID:       getUserIDFromContext(c),
		Visibility:    visibility,
		Category:      req.Category,
		Theme:         req.Theme,
		CoverImageURL: req.CoverImageURL,
	}
	if visibility == models.VisibilityShared {
		board.ShareToken = uuid.NewString()
	}

	if err := h.boardRepository.CreateBoard(board); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, board)
}

// UpdateBoard updates board fields; cover/theme changes are logged as
// COVER_CHANGED, everything else as SETTINGS_UPDATED.
func (h *BoardHandler) UpdateBoard(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanManage {
		return forbidden(getUserIDFromContext(c))
	}

	var req models.UpdateBoardRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	activityType := models.ActivitySettingsUpdated
	if req.Name != nil {
		board.Name = *req.Name
	}
	if req.Description != nil {
		board.Description = *req.Description
	}
	if req.Visibility != nil {
		board.Visibility = *req.Visibility
		if board.Visibility == models.VisibilityShared && board.ShareToken == "" {
			board.ShareToken = uuid.NewString()
		}
	}
	if req.Category != nil {
		board.Category = *req.Category
	}
	if req.Archived != nil {
		board.Archived = *req.Archived
	}
	if req.Theme != nil || req.CoverImageURL != nil {
		if req.Theme != nil {
			board.Theme = *req.Theme
		}
		if req.CoverImageURL != nil {
			board.CoverImageURL = *req.CoverImageURL
		}
		activityType = models.ActivityCoverChanged
	}

	if err := h.boardRepository.UpdateBoard(board, getUserIDFromContext(c), activityType); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, board)
}

// DeleteBoard deletes a board. Owner only, stricter than CanManage.
func (h *BoardHandler) DeleteBoard(c echo.Context) error {
	board, _, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if board.OwnerID != getUserIDFromContext(c) {
		return forbidden(getUserIDFromContext(c))
	}

	if err := h.boardRepository.DeleteBoard(board.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
