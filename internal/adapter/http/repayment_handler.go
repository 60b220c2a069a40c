package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"chama-ledger/internal/domain/timing"
	"chama-ledger/internal/usecase/approval"
)

// RepaymentHandler serves the admin review of submitted repayments.
type RepaymentHandler struct {
	uc  *approval.Usecase
	log *zap.Logger
}

func NewRepaymentHandler(uc *approval.Usecase, log *zap.Logger) *RepaymentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RepaymentHandler{uc: uc, log: log}
}

type rejectReq struct {
	Notes string `json:"notes" validate:"max=500"`
}

type rateRepaymentReq struct {
	// Accept canonical date `YYYY-MM-DD` (aligns with schema DATE)
	ExpectedDueDate string `json:"expected_due_date" validate:"omitempty,datetime=2006-01-02"`
	Rating          string `json:"rating"            validate:"omitempty,oneof=early on_time late"`
	Notes           string `json:"notes"             validate:"max=500"`
}

func (h *RepaymentHandler) Approve(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "repayment_id")
	if err != nil {
		return err
	}
	out, err := h.uc.Approve(c.Request().Context(), actor, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RepaymentHandler) Reject(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "repayment_id")
	if err != nil {
		return err
	}
	var req rejectReq
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.uc.Reject(c.Request().Context(), actor, id, req.Notes)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RepaymentHandler) RateTiming(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "repayment_id")
	if err != nil {
		return err
	}
	var req rateRepaymentReq
	if err := bind(c, &req); err != nil {
		return err
	}
	in := approval.RateInput{ExpectedDueDate: optDate(req.ExpectedDueDate), Notes: req.Notes}
	if req.Rating != "" {
		r := timing.Rating(req.Rating)
		in.Rating = &r
	}
	p, err := h.uc.RateTiming(c.Request().Context(), actor, id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, p)
}
