package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/waymark-app/waymark-backend/internal/models"
	"github.com/waymark-app/waymark-backend/internal/repositories"
	"gorm.io/gorm"
)

// MemberHandler handles board membership and ownership requests
type MemberHandler struct {
	boardRepository  repositories.BoardRepository
	memberRepository repositories.MemberRepository
	userRepository   repositories.UserRepository
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(boardRepo repositories.BoardRepository, memberRepo repositories.MemberRepository, userRepo repositories.UserRepository) *MemberHandler {
	return &MemberHandler{
		boardRepository:  boardRepo,
		memberRepository: memberRepo,
		userRepository:   userRepo,
	}
}

// RegisterMemberRoutes registers membership routes
func (h *MemberHandler) RegisterMemberRoutes(public, protected *echo.Group) {
	public.GET("/boards/:id/members", h.ListMembers)
	protected.POST("/boards/:id/members", h.InviteMember)
	protected.PATCH("/boards/:id/members/:memberId", h.ChangeRole)
	protected.DELETE("/boards/:id/members/:memberId", h.RemoveMember)
	protected.POST("/boards/:id/transfer", h.TransferOwnership)
}

// ListMembers returns the member list of a viewable board
func (h *MemberHandler) ListMembers(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanView {
		return forbidden(getUserIDFromContext(c))
	}

	members, err := h.memberRepository.ListMembers(board.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members})
}

// InviteMember adds a user to the board with the requested role. The
// identifier resolves by exact handle first, then case-insensitive
// first+last name.
func (h *MemberHandler) InviteMember(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanManage {
		return forbidden(getUserIDFromContext(c))
	}

	var req models.InviteMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	target, err := h.userRepository.ResolveByIdentifier(req.Username)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// The owner is implicitly the highest-privilege member and never
	// appears in the member list.
	if target.ID == board.OwnerID {
		return echo.NewHTTPError(http.StatusConflict, "User already owns this board")
	}
	if _, err := h.memberRepository.GetMember(board.ID, target.ID); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User is already a member")
	} else if err != gorm.ErrRecordNotFound {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	member := &models.BoardMember{
		BoardID: board.ID,
		UserID:  target.ID,
		Role:    req.Role,
		User:    *target,
	}
	if err := h.memberRepository.AddMember(member, getUserIDFromContext(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, member)
}

// ChangeRole updates a member's role. OWNER is rejected here; owner changes
// only happen through TransferOwnership.
func (h *MemberHandler) ChangeRole(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanManage {
		return forbidden(getUserIDFromContext(c))
	}

	memberID, err := paramUint(c, "memberId")
	if err != nil {
		return err
	}

	var req models.UpdateMemberRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Role == models.RoleOwner {
		return echo.NewHTTPError(http.StatusBadRequest, "Ownership changes go through the transfer endpoint")
	}

	member, err := h.memberRepository.GetMemberByID(memberID)
	if err != nil || member.BoardID != board.ID {
		return echo.NewHTTPError(http.StatusNotFound, "Member not found")
	}

	if err := h.memberRepository.ChangeRole(member, req.Role, getUserIDFromContext(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	member.Role = req.Role
	return c.JSON(http.StatusOK, member)
}

// RemoveMember removes a member from the board
func (h *MemberHandler) RemoveMember(c echo.Context) error {
	board, decision, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	if !decision.CanManage {
		return forbidden(getUserIDFromContext(c))
	}

	memberID, err := paramUint(c, "memberId")
	if err != nil {
		return err
	}
	member, err := h.memberRepository.GetMemberByID(memberID)
	if err != nil || member.BoardID != board.ID {
		return echo.NewHTTPError(http.StatusNotFound, "Member not found")
	}

	if err := h.memberRepository.RemoveMember(member, getUserIDFromContext(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// TransferOwnership hands the board to another user. Strictly owner-only,
// independent of CanManage.
func (h *MemberHandler) TransferOwnership(c echo.Context) error {
	board, _, err := resolveBoardAccess(c, h.boardRepository, h.memberRepository)
	if err != nil {
		return err
	}
	actorID := getUserIDFromContext(c)
	if board.OwnerID != actorID {
		return forbidden(actorID)
	}

	var req models.TransferOwnershipRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	target, err := h.userRepository.ResolveByIdentifier(req.Username)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if target.ID == board.OwnerID {
		return echo.NewHTTPError(http.StatusBadRequest, "Board is already owned by this user")
	}

	if err := h.boardRepository.TransferOwnership(board, target); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{
		"board":     board,
		"new_owner": target.ToCompact(),
	})
}
