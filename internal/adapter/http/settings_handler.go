package http

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"chama-ledger/internal/domain/group"
	"chama-ledger/internal/domain/period"
	"chama-ledger/internal/usecase/settings"
)

type SettingsHandler struct {
	uc  *settings.Usecase
	log *zap.Logger
}

func NewSettingsHandler(uc *settings.Usecase, log *zap.Logger) *SettingsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsHandler{uc: uc, log: log}
}

// Every field is optional; ranges are checked by the group policy itself.
type settingsPatchReq struct {
	InterestRate          *json.Number          `json:"interest_rate"           validate:"omitempty,money0"`
	MinimumLoanSavings    *json.Number          `json:"minimum_loan_savings"    validate:"omitempty,money0"`
	LoanInstallmentPeriod *string               `json:"loan_installment_period" validate:"omitempty,oneof=weekly monthly"`
	Contribution          *contributionPatchReq `json:"contribution_settings"`
}

type contributionPatchReq struct {
	Amount             *json.Number `json:"amount"               validate:"omitempty,money"`
	Frequency          *string      `json:"frequency"            validate:"omitempty,oneof=weekly monthly"`
	DueDay             *int         `json:"due_day"`
	ReminderDaysBefore *int         `json:"reminder_days_before"`
	PenaltyAmount      *json.Number `json:"penalty_amount"       validate:"omitempty,money0"`
	GracePeriodDays    *int         `json:"grace_period_days"`
	AutoReminders      *bool        `json:"auto_reminders"`
	StartDate          *string      `json:"start_date"           validate:"omitempty,datetime=2006-01-02"`
}

func (r settingsPatchReq) patch() group.Patch {
	p := group.Patch{
		InterestRate:       optAmount(r.InterestRate),
		MinimumLoanSavings: optAmount(r.MinimumLoanSavings),
	}
	if r.LoanInstallmentPeriod != nil {
		f := period.Frequency(*r.LoanInstallmentPeriod)
		p.LoanInstallmentPeriod = &f
	}
	if cs := r.Contribution; cs != nil {
		p.Amount = optAmount(cs.Amount)
		p.PenaltyAmount = optAmount(cs.PenaltyAmount)
		p.DueDay = cs.DueDay
		p.ReminderDaysBefore = cs.ReminderDaysBefore
		p.GracePeriodDays = cs.GracePeriodDays
		p.AutoReminders = cs.AutoReminders
		if cs.Frequency != nil {
			f := period.Frequency(*cs.Frequency)
			p.Frequency = &f
		}
		if cs.StartDate != nil {
			p.StartDate = optDate(*cs.StartDate)
		}
	}
	return p
}

func (h *SettingsHandler) Get(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	s, err := h.uc.Get(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *SettingsHandler) Update(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req settingsPatchReq
	if err := bind(c, &req); err != nil {
		return err
	}
	s, err := h.uc.Update(c.Request().Context(), actor, req.patch())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, s)
}
