package group

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/period"
	"chama-ledger/internal/domain/timing"
)

var today = timing.NewDate(2024, time.January, 1)

func TestDefaultsAreValid(t *testing.T) {
	s := Defaults("g1", today)
	require.NoError(t, s.Validate())
	assert.Equal(t, "g1", s.GroupID)
	assert.Equal(t, today, s.Contribution.StartDate)
}

func TestPatchApply(t *testing.T) {
	s := Defaults("g1", today)
	monthly := period.Monthly
	day := 31
	rate := decimal.NewFromFloat(12.5)

	out, err := Patch{Frequency: &monthly, DueDay: &day, InterestRate: &rate}.Apply(s)
	require.NoError(t, err)
	assert.Equal(t, period.Monthly, out.Contribution.Frequency)
	assert.Equal(t, 31, out.Contribution.DueDay)
	assert.True(t, out.InterestRate.Equal(rate))
	// original untouched
	assert.Equal(t, period.Weekly, s.Contribution.Frequency)
}

func TestPatchApply_RejectsInvalidWholeSettings(t *testing.T) {
	s := Defaults("g1", today)
	day := 31 // weekly schedules only allow 1..7

	out, err := Patch{DueDay: &day}.Apply(s)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, s, out)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Settings){
		"rate above 100":   func(s *Settings) { s.InterestRate = decimal.NewFromInt(101) },
		"negative rate":    func(s *Settings) { s.InterestRate = decimal.NewFromInt(-1) },
		"negative minimum": func(s *Settings) { s.MinimumLoanSavings = decimal.NewFromInt(-1) },
		"zero amount":      func(s *Settings) { s.Contribution.Amount = decimal.Zero },
		"bad frequency":    func(s *Settings) { s.Contribution.Frequency = "daily" },
		"weekday zero":     func(s *Settings) { s.Contribution.DueDay = 0 },
		"negative grace":   func(s *Settings) { s.Contribution.GracePeriodDays = -1 },
		"negative remind":  func(s *Settings) { s.Contribution.ReminderDaysBefore = -2 },
		"negative penalty": func(s *Settings) { s.Contribution.PenaltyAmount = decimal.NewFromInt(-5) },
		"bad loan period":  func(s *Settings) { s.LoanInstallmentPeriod = "" },
		"no start date":    func(s *Settings) { s.Contribution.StartDate = time.Time{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			s := Defaults("g1", today)
			mutate(&s)
			assert.ErrorIs(t, s.Validate(), apperr.ErrValidation)
		})
	}
}
