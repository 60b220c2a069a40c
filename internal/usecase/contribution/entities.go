package contribution

import (
	"time"

	"github.com/shopspring/decimal"

	"chama-ledger/internal/domain/contribution"
	"chama-ledger/internal/domain/period"
	"chama-ledger/internal/domain/timing"
)

type RecordInput struct {
	MemberID   string
	WeekNumber int
	Amount     decimal.Decimal
	PaidDate   *time.Time
}

type RateInput struct {
	Rating *timing.Rating
	Notes  string
}

// MemberContributions is a member's contribution history with the savings
// balance derived from it.
type MemberContributions struct {
	MemberID       string                      `json:"member_id"`
	SavingsBalance decimal.Decimal             `json:"savings_balance"`
	Contributions  []contribution.Contribution `json:"contributions"`
}

// ScheduleView is the group's contribution calendar as seen today.
type ScheduleView struct {
	Frequency          period.Frequency `json:"frequency"`
	DueDay             int              `json:"due_day"`
	Amount             decimal.Decimal  `json:"amount"`
	PenaltyAmount      decimal.Decimal  `json:"penalty_amount"`
	GracePeriodDays    int              `json:"grace_period_days"`
	CurrentWeek        int              `json:"current_week"`
	NextDueDate        time.Time        `json:"next_due_date"`
	ReminderDate       time.Time        `json:"reminder_date"`
	ReminderDaysBefore int              `json:"reminder_days_before"`
	AutoReminders      bool             `json:"auto_reminders"`
}
