package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
	"gorm.io/gorm"
)

// BoardPinHandler handles the pins-on-a-board surface: linking, per-board
// context and manual ordering.
type BoardPinHandler struct {
	boardRepository    repositories.BoardRepository
	memberRepository   repositories.MemberRepository
	boardPinRepository repositories.BoardPinRepository
	pinRepository      repositories.PinRepository
}

// NewBoardPinHandler creates a new BoardPinHandler
func NewBoardPinHandler(boardRepo repositories.BoardRepository, memberRepo repositories.MemberRepository, boardPinRepo repositories.BoardPinRepository, pinRepo repositories.PinRepository) *BoardPinHandler {
	return &BoardPinHandler{
		boardRepository:    boardRepo,
		memberRepository:   memberRepo,
		boardPinRepository: boardPinRepo,
		pinRepository:      pinRepo,
	}
}

// RegisterBoardPinRoutes registers board-pin routes
func (h *BoardPinHandler) RegisterBoardPinRoutes(protected *echo.Group) {
	protected.POST("/boards/:id/pins", h.AddPin)
	protected.PATCH("/boards/:id/pins/reorder", h.Reorder)
	protected.PATCH("/boards/:id/pins/:pinId", h.UpdatePin)
	protected.DELETE("/boards/:id/pins/:pinId", h.RemovePin)
}

// AddPin links an existing pin to the board at the tail position
func (h *BoardPinHandler) AddPin(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanEdit {
		return forbidden(getUserIDFromContext(c))
	}

	var req models.AddBoardPinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pin, err := h.pinRepository.GetPinByID(req.PinID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Pin not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if _, err := h.boardPinRepository.GetBoardPin(board.ID, pin.ID); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Pin is already on this board")
	} else if err != gorm.ErrRecordNotFound {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	boardPin := &models.BoardPin{
		BoardID:   board.ID,
		PinID:     pin.ID,
		Relevance: req.Relevance,
		Notes:     req.Notes,
	}
	if err := h.boardPinRepository.AddPinToBoard(boardPin, pin, getUserIDFromContext(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	boardPin.Pin = *pin
	return c.JSON(http.StatusCreated, boardPin)
}

// UpdatePin updates the per-board relevance/notes of a linked pin
func (h *BoardPinHandler) UpdatePin(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanEdit {
		return forbidden(getUserIDFromContext(c))
	}

	pinID, err := paramUint(c, "pinId")
	if err != nil {
		return err
	}

	var req models.UpdateBoardPinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	boardPin, err := h.boardPinRepository.GetBoardPin(board.ID, pinID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Pin is not on this board")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.Relevance != nil {
		boardPin.Relevance = req.Relevance
	}
	if req.Notes != nil {
		boardPin.Notes = *req.Notes
	}
	if err := h.boardPinRepository.UpdateBoardPin(boardPin); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, boardPin)
}

// RemovePin unlinks a pin. Remaining positions are not renumbered.
func (h *BoardPinHandler) RemovePin(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanEdit {
		return forbidden(getUserIDFromContext(c))
	}

	pinID, err := paramUint(c, "pinId")
	if err != nil {
		return err
	}
	boardPin, err := h.boardPinRepository.GetBoardPin(board.ID, pinID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Pin is not on this board")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	pin, err := h.pinRepository.GetPinByID(pinID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.boardPinRepository.RemovePinFromBoard(boardPin, pin, getUserIDFromContext(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Reorder applies a client-submitted order in one batch. The server assigns
// the canonical positions; concurrent reorders are last-write-wins.
func (h *BoardPinHandler) Reorder(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanEdit {
		return forbidden(getUserIDFromContext(c))
	}

	var req models.ReorderBoardPinsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.boardPinRepository.Reorder(board.ID, req.PinIDs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pins, err := h.boardPinRepository.ListBoardPins(board.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"pins": pins})
}
