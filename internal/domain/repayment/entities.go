package repayment

import (
	"time"

	"github.com/shopspring/decimal"

	"chama-ledger/internal/domain/timing"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

// Table: repayments. Only approved rows count toward a loan's approved sum.
type Repayment struct {
	ID          uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	RepaymentID string          `gorm:"column:repayment_id;size:32;not null;uniqueIndex:ux_repayments_repayment_id" json:"repayment_id"`
	LoanID      uint64          `gorm:"column:loan_id;not null;index" json:"-"`
	MemberID    string          `gorm:"column:member_id;size:32;not null;index" json:"member_id"`
	Amount      decimal.Decimal `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	PaidDate    time.Time       `gorm:"column:paid_date;type:date;not null" json:"paid_date"`
	Status      Status          `gorm:"column:status;size:16;not null;default:'pending'" json:"status"`

	ExpectedDueDate *time.Time    `gorm:"column:expected_due_date;type:date" json:"expected_due_date,omitempty"`
	TimingRating    timing.Rating `gorm:"column:timing_rating;size:16;not null;default:'not_rated'" json:"timing_rating"`
	DaysLate        int           `gorm:"column:days_late;not null;default:0" json:"days_late"`
	RatingNotes     string        `gorm:"column:rating_notes;type:text" json:"rating_notes,omitempty"`
	RatedBy         string        `gorm:"column:rated_by;size:32" json:"rated_by,omitempty"`
	RatedAt         *time.Time    `gorm:"column:rated_at" json:"rated_at,omitempty"`

	ReviewedBy  string     `gorm:"column:reviewed_by;size:32" json:"reviewed_by,omitempty"`
	ReviewNotes string     `gorm:"column:review_notes;type:text" json:"review_notes,omitempty"`
	ConfirmedAt *time.Time `gorm:"column:confirmed_at" json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Repayment) TableName() string { return "repayments" }

// Review is the outcome of an admin decision on a pending repayment.
type Review struct {
	To          Status
	ReviewedBy  string
	Notes       string
	ConfirmedAt *time.Time
}
