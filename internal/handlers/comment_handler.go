package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
	"gorm.io/gorm"
)

// CommentHandler handles the board discussion surface
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	boardRepository   repositories.BoardRepository
	memberRepository  repositories.MemberRepository
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, boardRepo repositories.BoardRepository, memberRepo repositories.MemberRepository) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		boardRepository:   boardRepo,
		memberRepository:  memberRepo,
	}
}

// RegisterCommentRoutes registers comment routes
func (h *CommentHandler) RegisterCommentRoutes(public, protected *echo.Group) {
	public.GET("/boards/:id/comments", h.ListComments)
	protected.POST("/boards/:id/comments", h.CreateComment)
	protected.POST("/boards/:id/comments/:commentId/reactions", h.AddReaction)
	protected.DELETE("/boards/:id/comments/:commentId/reactions", h.RemoveReaction)
	protected.PATCH("/boards/:id/comments/:commentId/pin", h.PinComment)
}

// CreateComment posts a comment on a viewable board. One level of quoting:
// a reply's parent must be a top-level comment on the same board.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanView {
		return forbidden(getUserIDFromContext(c))
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.ParentID != nil {
		parent, err := h.commentRepository.GetCommentByID(*req.ParentID)
		if err != nil || parent.BoardID != board.ID {
			return echo.NewHTTPError(http.StatusNotFound, "Parent comment not found")
		}
		if parent.ParentID != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Replies cannot nest further")
		}
	}

	comment := &models.BoardComment{
		BoardID:  board.ID,
		UserID:   getUserIDFromContext(c),
		ParentID: req.ParentID,
		Content:  req.Content,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, comment)
}

// ListComments returns the threaded discussion of a viewable board
func (h *CommentHandler) ListComments(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanView {
		return forbidden(getUserIDFromContext(c))
	}

	comments, err := h.commentRepository.ListByBoard(board.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Assemble the single level of threading.
	byID := make(map[uint]int, len(comments))
	var threaded []models.BoardComment
	for _, cm := range comments {
		if cm.ParentID == nil {
			threaded = append(threaded, cm)
			byID[cm.ID] = len(threaded) - 1
		}
	}
	for _, cm := range comments {
		if cm.ParentID == nil {
			continue
		}
		if idx, ok := byID[*cm.ParentID]; ok {
			threaded[idx].Replies = append(threaded[idx].Replies, cm)
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"comments": threaded})
}

// AddReaction records a user x emoji reaction on a comment
func (h *CommentHandler) AddReaction(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanView {
		return forbidden(getUserIDFromContext(c))
	}

	comment, httpErr := h.loadComment(c, board.ID)
	if httpErr != nil {
		return httpErr
	}

	var req models.ReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reaction := &models.CommentReaction{
		CommentID: comment.ID,
		UserID:    getUserIDFromContext(c),
		Emoji:     req.Emoji,
	}
	if err := h.commentRepository.AddReaction(reaction); err != nil {
		return echo.NewHTTPError(http.StatusConflict, "Reaction already exists")
	}
	return c.JSON(http.StatusCreated, reaction)
}

// RemoveReaction removes the caller's reaction
func (h *CommentHandler) RemoveReaction(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanView {
		return forbidden(getUserIDFromContext(c))
	}

	comment, httpErr := h.loadComment(c, board.ID)
	if httpErr != nil {
		return httpErr
	}

	var req models.ReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.commentRepository.RemoveReaction(comment.ID, getUserIDFromContext(c), req.Emoji)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Reaction not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// PinComment flags or unflags a comment; body {"pinned": bool}
func (h *CommentHandler) PinComment(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanManage {
		return forbidden(getUserIDFromContext(c))
	}

	comment, httpErr := h.loadComment(c, board.ID)
	if httpErr != nil {
		return httpErr
	}

	var req struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	if err := h.commentRepository.SetPinned(comment, req.Pinned); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	comment.Pinned = req.Pinned
	return c.JSON(http.StatusOK, comment)
}

func (h *CommentHandler) loadComment(c echo.Context, boardID uint) (*models.BoardComment, error) {
	commentID, err := paramUint(c, "commentId")
	if err != nil {
		return nil, err
	}
	comment, err := h.commentRepository.GetCommentByID(commentID)
	if err != nil || comment.BoardID != boardID {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}
	return comment, nil
}
