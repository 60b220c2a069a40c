package mysql

import (
	"gorm.io/gorm"

	"chama-ledger/internal/domain/contribution"
	"chama-ledger/internal/domain/group"
	"chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/member"
	"chama-ledger/internal/domain/repayment"
	"chama-ledger/internal/domain/rotation"
)

// Models lists every table the ledger owns.
func Models() []any {
	return []any{
		&member.Member{},
		&group.Settings{},
		&contribution.Contribution{},
		&loan.Loan{},
		&loan.Installment{},
		&repayment.Repayment{},
		&rotation.Cycle{},
		&rotation.Slot{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
