// Package contribution covers the recurring contribution schedule and the
// per-period contribution records of each member.
package contribution

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/timing"
)

type Status string

const (
	StatusPending       Status = "pending"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
	StatusLate          Status = "late"
)

// Settled reports whether the period's obligation is fully met.
func (s Status) Settled() bool { return s == StatusPaid || s == StatusLate }

// Contribution is one member's obligation for one period (week_number).
type Contribution struct {
	ID             uint64          `gorm:"primaryKey;column:id" json:"-"`
	ContributionID string          `gorm:"size:32;uniqueIndex:ux_contributions_contribution_id" json:"contribution_id"`
	GroupID        string          `gorm:"size:32;index:idx_contributions_group_week" json:"group_id"`
	MemberID       string          `gorm:"size:32;uniqueIndex:ux_contributions_member_week" json:"member_id"`
	WeekNumber     int             `gorm:"uniqueIndex:ux_contributions_member_week;index:idx_contributions_group_week" json:"week_number"`
	ExpectedAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"expected_amount"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,2)" json:"paid_amount"`
	PenaltyApplied decimal.Decimal `gorm:"type:decimal(18,2)" json:"penalty_applied"`
	DueDate        time.Time       `gorm:"type:date" json:"due_date"`
	PaidDate       *time.Time      `gorm:"type:date" json:"paid_date,omitempty"`
	Status         Status          `gorm:"size:16;default:'pending'" json:"status"`
	TimingRating   timing.Rating   `gorm:"size:16;default:'not_rated'" json:"timing_rating"`
	DaysLate       int             `json:"days_late"`
	RatingNotes    string          `gorm:"type:text" json:"rating_notes,omitempty"`
	RatedBy        string          `gorm:"size:32" json:"rated_by,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contribution) TableName() string { return "contributions" }

// Outstanding is what remains to settle the period.
func (c *Contribution) Outstanding() decimal.Decimal { return c.ExpectedAmount.Sub(c.PaidAmount) }

// Policy is the slice of group settings a payment is evaluated against.
type Policy struct {
	PenaltyAmount   decimal.Decimal
	GracePeriodDays int
}

// ApplyPayment adds a (possibly partial) payment. A payment made after the
// grace period adds the penalty to this period's expected amount once. An
// amount larger than what is outstanding is rejected, never clamped.
func (c *Contribution) ApplyPayment(amount decimal.Decimal, paid time.Time, p Policy) error {
	if !amount.IsPositive() {
		return apperr.Invalid("amount", "must be greater than zero")
	}
	paid = timing.Day(paid)
	expected := c.ExpectedAmount
	penalty := c.PenaltyApplied
	if penalty.IsZero() && p.PenaltyAmount.IsPositive() {
		expected = ExpectedAmount(c.ExpectedAmount, p.PenaltyAmount, c.DueDate, paid, p.GracePeriodDays)
		penalty = expected.Sub(c.ExpectedAmount)
	}
	if out := expected.Sub(c.PaidAmount); amount.GreaterThan(out) {
		return apperr.Invalid("amount", "exceeds outstanding contribution of "+out.StringFixed(2))
	}

	c.ExpectedAmount = expected
	c.PenaltyApplied = penalty
	c.PaidAmount = c.PaidAmount.Add(amount)
	c.PaidDate = &paid

	if c.PaidAmount.LessThan(c.ExpectedAmount) {
		c.Status = StatusPartiallyPaid
		return nil
	}
	due := c.DueDate
	res := timing.Classify(&due, paid, p.GracePeriodDays)
	c.TimingRating = res.Rating
	c.DaysLate = res.DaysLate
	if res.Rating == timing.Late {
		c.Status = StatusLate
	} else {
		c.Status = StatusPaid
	}
	return nil
}

// RateTiming re-classifies a paid contribution, or applies an admin's
// explicit rating when one is given.
func (c *Contribution) RateTiming(rating *timing.Rating, graceDays int) error {
	if c.PaidDate == nil {
		return &apperr.InvalidStateError{Entity: "contribution", ID: c.ContributionID, From: string(c.Status), Op: "rate"}
	}
	due := c.DueDate
	auto := timing.Classify(&due, *c.PaidDate, graceDays)
	if rating == nil {
		c.TimingRating = auto.Rating
		c.DaysLate = auto.DaysLate
		return nil
	}
	if !rating.Rated() {
		return apperr.Invalid("rating", "must be early, on_time or late")
	}
	c.TimingRating = *rating
	c.DaysLate = 0
	if *rating == timing.Late {
		c.DaysLate = auto.DaysLate
	}
	return nil
}

// SavingsBalance sums what a member has actually paid in.
func SavingsBalance(cs []Contribution) decimal.Decimal {
	total := decimal.Zero
	for _, c := range cs {
		total = total.Add(c.PaidAmount)
	}
	return total
}

type Repository interface {
	Create(ctx context.Context, c *Contribution) error
	Save(ctx context.Context, c *Contribution) error
	GetByContributionID(ctx context.Context, contributionID string) (*Contribution, error)
	GetByMemberWeek(ctx context.Context, memberID string, week int) (*Contribution, error)
	// locks the row until the surrounding transaction ends
	GetByMemberWeekForUpdate(ctx context.Context, memberID string, week int) (*Contribution, error)
	ListByMemberID(ctx context.Context, memberID string) ([]Contribution, error)
	ListByGroupWeek(ctx context.Context, groupID string, week int) ([]Contribution, error)
	SumPaidByMemberID(ctx context.Context, memberID string) (decimal.Decimal, error)
}
