package http

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"chama-ledger/internal/domain/period"
	"chama-ledger/internal/usecase/rotation"
)

type RotationHandler struct {
	uc  *rotation.Usecase
	log *zap.Logger
}

func NewRotationHandler(uc *rotation.Usecase, log *zap.Logger) *RotationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RotationHandler{uc: uc, log: log}
}

type createCycleReq struct {
	ContributionAmount *json.Number `json:"contribution_amount" validate:"omitempty,money"`
	Frequency          string       `json:"frequency"           validate:"omitempty,oneof=weekly monthly"`
	Order              []string     `json:"order"               validate:"omitempty,dive,hex32"`
	Reshuffle          bool         `json:"reshuffle"`
}

type obligationReq struct {
	Position int `json:"position" validate:"required,gte=1"`
}

func (h *RotationHandler) State(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	v, err := h.uc.State(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *RotationHandler) CreateCycle(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req createCycleReq
	if err := bind(c, &req); err != nil {
		return err
	}
	in := rotation.CreateInput{
		ContributionAmount: optAmount(req.ContributionAmount),
		Order:              req.Order,
		Reshuffle:          req.Reshuffle,
	}
	if req.Frequency != "" {
		f := period.Frequency(req.Frequency)
		in.Frequency = &f
	}
	v, err := h.uc.Create(c.Request().Context(), actor, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *RotationHandler) RecordObligationMet(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	cycleID, err := pathID(c, "cycle_id")
	if err != nil {
		return err
	}
	var req obligationReq
	if err := bind(c, &req); err != nil {
		return err
	}
	v, err := h.uc.RecordObligationMet(c.Request().Context(), actor, cycleID, req.Position)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, v)
}
