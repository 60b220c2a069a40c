// Package group holds the group policy: interest, loan eligibility threshold
// and the contribution schedule. It is configuration consumed by the ledger.
package group

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/period"
	"chama-ledger/internal/domain/timing"
)

type Settings struct {
	ID                    uint64               `gorm:"primaryKey;column:id" json:"-"`
	GroupID               string               `gorm:"size:32;uniqueIndex:ux_group_settings_group" json:"group_id"`
	InterestRate          decimal.Decimal      `gorm:"type:decimal(6,2)" json:"interest_rate"`
	MinimumLoanSavings    decimal.Decimal      `gorm:"type:decimal(18,2)" json:"minimum_loan_savings"`
	LoanInstallmentPeriod period.Frequency     `gorm:"size:16" json:"loan_installment_period"`
	Contribution          ContributionSettings `gorm:"embedded;embeddedPrefix:contribution_" json:"contribution_settings"`
	Version               int                  `gorm:"not null;default:1" json:"version"`
	UpdatedAt             time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Settings) TableName() string { return "group_settings" }

type ContributionSettings struct {
	Amount             decimal.Decimal  `gorm:"type:decimal(18,2)" json:"amount"`
	Frequency          period.Frequency `gorm:"size:16" json:"frequency"`
	DueDay             int              `json:"due_day"`
	ReminderDaysBefore int              `json:"reminder_days_before"`
	PenaltyAmount      decimal.Decimal  `gorm:"type:decimal(18,2)" json:"penalty_amount"`
	GracePeriodDays    int              `json:"grace_period_days"`
	AutoReminders      bool             `json:"auto_reminders"`
	// StartDate anchors period numbering: week_number 1 is the first due date on or after it.
	StartDate time.Time `gorm:"type:date" json:"start_date"`
}

// Defaults returns the settings a new group starts with.
func Defaults(groupID string, today time.Time) Settings {
	return Settings{
		GroupID:               groupID,
		InterestRate:          decimal.NewFromInt(10),
		MinimumLoanSavings:    decimal.Zero,
		LoanInstallmentPeriod: period.Monthly,
		Contribution: ContributionSettings{
			Amount:             decimal.NewFromInt(1000),
			Frequency:          period.Weekly,
			DueDay:             int(time.Monday),
			ReminderDaysBefore: 1,
			PenaltyAmount:      decimal.Zero,
			GracePeriodDays:    0,
			AutoReminders:      true,
			StartDate:          timing.Day(today),
		},
		Version: 1,
	}
}

// Validate checks the settings as a whole; ranges are never coerced.
func (s Settings) Validate() error {
	c := s.Contribution
	switch {
	case s.InterestRate.IsNegative() || s.InterestRate.GreaterThan(decimal.NewFromInt(100)):
		return apperr.Invalid("interest_rate", "must be between 0 and 100")
	case s.MinimumLoanSavings.IsNegative():
		return apperr.Invalid("minimum_loan_savings", "must not be negative")
	case !s.LoanInstallmentPeriod.Valid():
		return apperr.Invalid("loan_installment_period", "must be weekly or monthly")
	case !c.Amount.IsPositive():
		return apperr.Invalid("contribution_settings.amount", "must be greater than zero")
	case !c.Frequency.Valid():
		return apperr.Invalid("contribution_settings.frequency", "must be weekly or monthly")
	case c.Frequency == period.Weekly && (c.DueDay < 1 || c.DueDay > 7):
		return apperr.Invalid("contribution_settings.due_day", "must be 1..7 for weekly schedules")
	case c.Frequency == period.Monthly && (c.DueDay < 1 || c.DueDay > 31):
		return apperr.Invalid("contribution_settings.due_day", "must be 1..31 for monthly schedules")
	case c.ReminderDaysBefore < 0:
		return apperr.Invalid("contribution_settings.reminder_days_before", "must not be negative")
	case c.PenaltyAmount.IsNegative():
		return apperr.Invalid("contribution_settings.penalty_amount", "must not be negative")
	case c.GracePeriodDays < 0:
		return apperr.Invalid("contribution_settings.grace_period_days", "must not be negative")
	case c.StartDate.IsZero():
		return apperr.Invalid("contribution_settings.start_date", "is required")
	}
	return nil
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	InterestRate          *decimal.Decimal
	MinimumLoanSavings    *decimal.Decimal
	LoanInstallmentPeriod *period.Frequency
	Amount                *decimal.Decimal
	Frequency             *period.Frequency
	DueDay                *int
	ReminderDaysBefore    *int
	PenaltyAmount         *decimal.Decimal
	GracePeriodDays       *int
	AutoReminders         *bool
	StartDate             *time.Time
}

// Apply returns a copy of s with the patch applied, validated as a whole.
func (p Patch) Apply(s Settings) (Settings, error) {
	out := s
	if p.InterestRate != nil {
		out.InterestRate = *p.InterestRate
	}
	if p.MinimumLoanSavings != nil {
		out.MinimumLoanSavings = *p.MinimumLoanSavings
	}
	if p.LoanInstallmentPeriod != nil {
		out.LoanInstallmentPeriod = *p.LoanInstallmentPeriod
	}
	if p.Amount != nil {
		out.Contribution.Amount = *p.Amount
	}
	if p.Frequency != nil {
		out.Contribution.Frequency = *p.Frequency
	}
	if p.DueDay != nil {
		out.Contribution.DueDay = *p.DueDay
	}
	if p.ReminderDaysBefore != nil {
		out.Contribution.ReminderDaysBefore = *p.ReminderDaysBefore
	}
	if p.PenaltyAmount != nil {
		out.Contribution.PenaltyAmount = *p.PenaltyAmount
	}
	if p.GracePeriodDays != nil {
		out.Contribution.GracePeriodDays = *p.GracePeriodDays
	}
	if p.AutoReminders != nil {
		out.Contribution.AutoReminders = *p.AutoReminders
	}
	if p.StartDate != nil {
		out.Contribution.StartDate = timing.Day(*p.StartDate)
	}
	if err := out.Validate(); err != nil {
		return s, err
	}
	return out, nil
}

type Repository interface {
	GetByGroupID(ctx context.Context, groupID string) (*Settings, error)
	Create(ctx context.Context, s *Settings) error
	// Update saves s only if the stored version still equals expectedVersion.
	Update(ctx context.Context, s *Settings, expectedVersion int) (bool, error)
}
