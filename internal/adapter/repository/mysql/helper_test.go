package mysql

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	loanDomain "chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/period"
	"chama-ledger/pkg/id"
)

// openTestDB creates a private in-memory sqlite DB with the full schema.
// One connection keeps every statement on the same memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", id.NewID32())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func makeLoan(loanID, memberID string, status loanDomain.Status) *loanDomain.Loan {
	due := date(2024, time.February, 1)
	return &loanDomain.Loan{
		LoanID:            loanID,
		GroupID:           "grp",
		MemberID:          memberID,
		Amount:            decimal.NewFromInt(10000),
		InterestRate:      decimal.NewFromInt(10),
		Fees:              decimal.NewFromInt(200),
		InstallmentNumber: 5,
		InstallmentPeriod: period.Monthly,
		InstallmentAmount: decimal.NewFromInt(2240),
		TotalDue:          decimal.NewFromInt(11200),
		ApprovedSum:       decimal.Zero,
		Status:            status,
		DueDate:           &due,
		StatusUpdatedAt:   time.Now().UTC(),
	}
}
