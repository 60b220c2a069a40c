package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainMember "chama-ledger/internal/domain/member"
	"chama-ledger/internal/usecase/member"
	"chama-ledger/internal/usecase/performance"
)

// MemberHandler serves the member roster and the performance views built on it.
type MemberHandler struct {
	members *member.Usecase
	perf    *performance.Usecase
	log     *zap.Logger
}

func NewMemberHandler(members *member.Usecase, perf *performance.Usecase, log *zap.Logger) *MemberHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &MemberHandler{members: members, perf: perf, log: log}
}

type addMemberReq struct {
	MemberID string `json:"member_id" validate:"omitempty,hex32"`
	Name     string `json:"name"      validate:"required,max=128"`
	Phone    string `json:"phone"     validate:"max=32"`
	Role     string `json:"role"      validate:"omitempty,oneof=admin member"`
	JoinedAt string `json:"joined_at" validate:"omitempty,datetime=2006-01-02"`
}

func (h *MemberHandler) Add(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req addMemberReq
	if err := bind(c, &req); err != nil {
		return err
	}
	m, err := h.members.Add(c.Request().Context(), actor, member.AddInput{
		MemberID: req.MemberID,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     domainMember.Role(req.Role),
		JoinedAt: optDate(req.JoinedAt),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *MemberHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	ms, err := h.members.List(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, ms)
}

func (h *MemberHandler) Get(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "member_id")
	if err != nil {
		return err
	}
	m, err := h.members.Get(c.Request().Context(), actor, memberID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) Performance(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "member_id")
	if err != nil {
		return err
	}
	p, err := h.perf.Summary(c.Request().Context(), actor, memberID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *MemberHandler) Leaderboard(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	board, err := h.perf.Leaderboard(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, board)
}
