package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(t time.Time) *time.Time { return &t }

func TestClassify_Boundaries(t *testing.T) {
	due := NewDate(2024, time.January, 10)

	tests := []struct {
		name     string
		paid     time.Time
		grace    int
		want     Rating
		daysLate int
	}{
		{"paid on due date", NewDate(2024, time.January, 10), 0, OnTime, 0},
		{"paid one day early", NewDate(2024, time.January, 9), 0, Early, 0},
		{"late beyond grace", NewDate(2024, time.January, 15), 2, Late, 3},
		{"last day of grace", NewDate(2024, time.January, 12), 2, OnTime, 0},
		{"first day after grace", NewDate(2024, time.January, 13), 2, Late, 1},
		{"late without grace", NewDate(2024, time.January, 11), 0, Late, 1},
		{"early with grace", NewDate(2023, time.December, 31), 5, Early, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(datePtr(due), tt.paid, tt.grace)
			assert.Equal(t, tt.want, got.Rating)
			assert.Equal(t, tt.daysLate, got.DaysLate)
		})
	}
}

func TestClassify_UnknownDueDate(t *testing.T) {
	got := Classify(nil, NewDate(2024, time.January, 10), 3)
	assert.Equal(t, Result{Rating: NotRated}, got)

	zero := time.Time{}
	got = Classify(&zero, NewDate(2024, time.January, 10), 3)
	assert.Equal(t, NotRated, got.Rating)
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	due := time.Date(2024, time.January, 10, 23, 59, 0, 0, time.UTC)
	paid := time.Date(2024, time.January, 10, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, OnTime, Classify(&due, paid, 0).Rating)
}

func TestClassify_NegativeGraceActsAsZero(t *testing.T) {
	due := NewDate(2024, time.January, 10)
	got := Classify(&due, NewDate(2024, time.January, 12), -4)
	assert.Equal(t, Late, got.Rating)
	assert.Equal(t, 2, got.DaysLate)
}

func TestRating_Points(t *testing.T) {
	assert.Equal(t, 3, Early.Points())
	assert.Equal(t, 2, OnTime.Points())
	assert.Equal(t, 1, Late.Points())
	assert.Equal(t, 0, NotRated.Points())
	assert.False(t, Rating("sometime").Valid())
	assert.False(t, NotRated.Rated())
}

func TestAddMonthsClamped(t *testing.T) {
	jan31 := NewDate(2024, time.January, 31)
	assert.Equal(t, NewDate(2024, time.February, 29), AddMonthsClamped(jan31, 1, 31))
	assert.Equal(t, NewDate(2024, time.March, 31), AddMonthsClamped(jan31, 2, 31))
	assert.Equal(t, NewDate(2025, time.February, 28), AddMonthsClamped(jan31, 13, 31))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), d)

	_, err = ParseDate("2023-02-29")
	assert.Error(t, err)
}
