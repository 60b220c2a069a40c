package http

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"chama-ledger/internal/domain/timing"
	"chama-ledger/internal/usecase/contribution"
)

type ContributionHandler struct {
	uc  *contribution.Usecase
	log *zap.Logger
}

func NewContributionHandler(uc *contribution.Usecase, log *zap.Logger) *ContributionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContributionHandler{uc: uc, log: log}
}

type recordContributionReq struct {
	MemberID   string      `json:"member_id"   validate:"required,hex32"`
	WeekNumber int         `json:"week_number" validate:"required,gte=1"`
	Amount     json.Number `json:"amount"      validate:"required,money"`
	PaidDate   string      `json:"paid_date"   validate:"omitempty,datetime=2006-01-02"`
}

type rateContributionReq struct {
	Rating string `json:"rating" validate:"omitempty,oneof=early on_time late"`
	Notes  string `json:"notes"  validate:"max=500"`
}

func (h *ContributionHandler) Record(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req recordContributionReq
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.uc.Record(c.Request().Context(), actor, contribution.RecordInput{
		MemberID:   req.MemberID,
		WeekNumber: req.WeekNumber,
		Amount:     amount(req.Amount),
		PaidDate:   optDate(req.PaidDate),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ContributionHandler) ListForMember(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	memberID, err := pathID(c, "member_id")
	if err != nil {
		return err
	}
	out, err := h.uc.List(c.Request().Context(), actor, memberID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContributionHandler) RateTiming(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "contribution_id")
	if err != nil {
		return err
	}
	var req rateContributionReq
	if err := bind(c, &req); err != nil {
		return err
	}
	in := contribution.RateInput{Notes: req.Notes}
	if req.Rating != "" {
		r := timing.Rating(req.Rating)
		in.Rating = &r
	}
	out, err := h.uc.RateTiming(c.Request().Context(), actor, id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ContributionHandler) Schedule(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Schedule(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}
