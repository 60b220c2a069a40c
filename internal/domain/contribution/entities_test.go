package contribution

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/timing"
)

func newContribution() *Contribution {
	return &Contribution{
		ContributionID: "c1",
		ExpectedAmount: decimal.NewFromInt(1000),
		PaidAmount:     decimal.Zero,
		PenaltyApplied: decimal.Zero,
		DueDate:        timing.NewDate(2024, time.January, 10),
		Status:         StatusPending,
		TimingRating:   timing.NotRated,
	}
}

var policy = Policy{PenaltyAmount: decimal.NewFromInt(100), GracePeriodDays: 2}

func TestApplyPayment_PartialThenFull(t *testing.T) {
	c := newContribution()

	require.NoError(t, c.ApplyPayment(decimal.NewFromInt(400), timing.NewDate(2024, time.January, 8), policy))
	assert.Equal(t, StatusPartiallyPaid, c.Status)
	assert.Equal(t, timing.NotRated, c.TimingRating)

	require.NoError(t, c.ApplyPayment(decimal.NewFromInt(600), timing.NewDate(2024, time.January, 9), policy))
	assert.Equal(t, StatusPaid, c.Status)
	assert.Equal(t, timing.Early, c.TimingRating)
	assert.True(t, c.PenaltyApplied.IsZero())
}

func TestApplyPayment_LatePaymentAddsPenaltyOnce(t *testing.T) {
	c := newContribution()
	late := timing.NewDate(2024, time.January, 15)

	require.NoError(t, c.ApplyPayment(decimal.NewFromInt(500), late, policy))
	assert.True(t, c.ExpectedAmount.Equal(decimal.NewFromInt(1100)))
	assert.Equal(t, StatusPartiallyPaid, c.Status)

	require.NoError(t, c.ApplyPayment(decimal.NewFromInt(600), late.AddDate(0, 0, 1), policy))
	assert.True(t, c.ExpectedAmount.Equal(decimal.NewFromInt(1100)), "penalty is not added twice")
	assert.Equal(t, StatusLate, c.Status)
	assert.Equal(t, timing.Late, c.TimingRating)
	assert.Equal(t, 4, c.DaysLate)
}

func TestApplyPayment_RejectsOverpaymentWithoutSideEffect(t *testing.T) {
	c := newContribution()
	err := c.ApplyPayment(decimal.NewFromInt(1200), timing.NewDate(2024, time.January, 15), policy)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.True(t, c.ExpectedAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, c.PaidAmount.IsZero())
	assert.Nil(t, c.PaidDate)

	assert.ErrorIs(t, c.ApplyPayment(decimal.Zero, timing.NewDate(2024, time.January, 9), policy), apperr.ErrValidation)
}

func TestRateTiming(t *testing.T) {
	c := newContribution()
	assert.ErrorIs(t, c.RateTiming(nil, 0), apperr.ErrInvalidState)

	require.NoError(t, c.ApplyPayment(decimal.NewFromInt(1000), timing.NewDate(2024, time.January, 12), policy))
	assert.Equal(t, timing.OnTime, c.TimingRating)

	late := timing.Late
	require.NoError(t, c.RateTiming(&late, 0))
	assert.Equal(t, timing.Late, c.TimingRating)
	assert.Equal(t, 2, c.DaysLate)

	require.NoError(t, c.RateTiming(nil, 2))
	assert.Equal(t, timing.OnTime, c.TimingRating)
	assert.Equal(t, 0, c.DaysLate)

	bad := timing.NotRated
	assert.ErrorIs(t, c.RateTiming(&bad, 0), apperr.ErrValidation)
}

func TestSavingsBalance(t *testing.T) {
	cs := []Contribution{{PaidAmount: decimal.NewFromInt(300)}, {PaidAmount: decimal.RequireFromString("250.50")}}
	assert.True(t, SavingsBalance(cs).Equal(decimal.RequireFromString("550.50")))
	assert.True(t, SavingsBalance(nil).IsZero())
}
