package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"chama-ledger/internal/domain/period"
)

type Status string

const (
	StatusRequested Status = "requested"
	StatusOffered   Status = "offered"
	StatusActive    Status = "active"
	StatusRejected  Status = "rejected"
	StatusClosed    Status = "closed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusOffered, StatusActive, StatusRejected, StatusClosed:
		return true
	}
	return false
}

// Open reports whether a loan in status s still blocks a new request.
func (s Status) Open() bool {
	return s == StatusRequested || s == StatusOffered || s == StatusActive
}

type Loan struct {
	ID                uint64           `gorm:"primaryKey;column:id" json:"-"`
	LoanID            string           `gorm:"size:32;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	GroupID           string           `gorm:"size:32;index:idx_loans_group" json:"group_id"`
	MemberID          string           `gorm:"size:32;index:idx_loans_member_status" json:"member_id"`
	Amount            decimal.Decimal  `gorm:"type:decimal(18,2)" json:"amount"`
	InterestRate      decimal.Decimal  `gorm:"type:decimal(6,2)" json:"interest_rate"`
	Fees              decimal.Decimal  `gorm:"type:decimal(18,2)" json:"fees"`
	InstallmentNumber int              `gorm:"column:installment_number" json:"installment_number"`
	InstallmentPeriod period.Frequency `gorm:"size:16" json:"installment_period"`
	InstallmentAmount decimal.Decimal  `gorm:"type:decimal(18,2)" json:"installment_amount"`
	TotalDue          decimal.Decimal  `gorm:"type:decimal(18,2)" json:"total_due"`
	ApprovedSum       decimal.Decimal  `gorm:"type:decimal(18,2)" json:"approved_sum"`
	Reason            string           `gorm:"type:text" json:"reason,omitempty"`
	Status            Status           `gorm:"size:16;index:idx_loans_member_status;default:'requested'" json:"status"`
	DueDate           *time.Time       `gorm:"type:date" json:"due_date,omitempty"`
	LastDueDate       *time.Time       `gorm:"type:date" json:"last_due_date,omitempty"`
	OfferedBy         string           `gorm:"size:32" json:"offered_by,omitempty"`
	StatusUpdatedAt   time.Time        `json:"status_updated_at"`
	CreatedAt         time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Loan) TableName() string { return "loans" }

// Outstanding is what is still owed after approved repayments.
func (l *Loan) Outstanding() decimal.Decimal { return l.TotalDue.Sub(l.ApprovedSum) }

// Installment is one scheduled partial repayment, created when an offer is accepted.
type Installment struct {
	ID       uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID   uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_installments_loan_seq" json:"-"`
	Sequence int             `gorm:"column:sequence;uniqueIndex:ux_installments_loan_seq" json:"sequence"`
	DueDate  time.Time       `gorm:"type:date" json:"due_date"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,2)" json:"amount"`
}

func (Installment) TableName() string { return "loan_installments" }
