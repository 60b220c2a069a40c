package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chama-ledger/internal/domain/timing"
)

func TestStep(t *testing.T) {
	jan31 := timing.NewDate(2024, time.January, 31)

	assert.Equal(t, timing.NewDate(2024, time.February, 14), Step(jan31, Weekly, 2))
	assert.Equal(t, timing.NewDate(2024, time.February, 29), Step(jan31, Monthly, 1))
	// Each step is computed from the anchor, so the 31st is restored after February.
	assert.Equal(t, timing.NewDate(2024, time.March, 31), Step(jan31, Monthly, 2))
	assert.Equal(t, jan31, Step(jan31, Monthly, 0))
}

func TestSeries(t *testing.T) {
	got := Series(timing.NewDate(2024, time.March, 1), Monthly, 3)
	assert.Equal(t, []time.Time{
		timing.NewDate(2024, time.March, 1),
		timing.NewDate(2024, time.April, 1),
		timing.NewDate(2024, time.May, 1),
	}, got)

	assert.Empty(t, Series(timing.NewDate(2024, time.March, 1), Weekly, 0))
}

func TestFrequencyValid(t *testing.T) {
	assert.True(t, Weekly.Valid())
	assert.True(t, Monthly.Valid())
	assert.False(t, Frequency("daily").Valid())
}
