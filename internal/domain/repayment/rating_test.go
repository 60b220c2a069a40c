package repayment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chama-ledger/internal/domain/apperr"
	"chama-ledger/internal/domain/timing"
)

func TestClassifyAutomatic(t *testing.T) {
	r := &Repayment{PaidDate: timing.NewDate(2024, time.January, 15)}
	due := time.Date(2024, time.January, 10, 15, 0, 0, 0, time.UTC)

	res := ClassifyAutomatic(r, &due, 2)
	assert.Equal(t, timing.Late, res.Rating)
	assert.Equal(t, 3, r.DaysLate)
	assert.Equal(t, timing.NewDate(2024, time.January, 10), *r.ExpectedDueDate)
}

func TestClassifyAutomatic_NoDueDate(t *testing.T) {
	r := &Repayment{PaidDate: timing.NewDate(2024, time.January, 15), TimingRating: timing.Early}
	res := ClassifyAutomatic(r, nil, 0)
	assert.Equal(t, timing.NotRated, res.Rating)
	assert.Equal(t, timing.NotRated, r.TimingRating)
	assert.Nil(t, r.ExpectedDueDate)
}

func TestApplyManualOverride(t *testing.T) {
	due := timing.NewDate(2024, time.January, 10)

	r := &Repayment{PaidDate: timing.NewDate(2024, time.January, 15)}
	res, err := ApplyManualOverride(r, timing.OnTime, &due, 0)
	require.NoError(t, err)
	assert.Equal(t, timing.OnTime, res.Rating)
	assert.Equal(t, 0, r.DaysLate)

	res, err = ApplyManualOverride(r, timing.Late, &due, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, res.DaysLate)

	res, err = ApplyManualOverride(r, timing.Late, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.DaysLate)

	_, err = ApplyManualOverride(r, timing.NotRated, &due, 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
