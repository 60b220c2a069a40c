package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chama-ledger/internal/domain/timing"
)

func TestAggregate_MixedRatings(t *testing.T) {
	s := Aggregate(Events(timing.Early, timing.Early, timing.OnTime, timing.Late))

	assert.Equal(t, 2.25, s.Score)
	assert.Equal(t, Good, s.AverageRating)
	assert.Equal(t, Breakdown{Early: 2, OnTime: 1, Late: 1}, s.Breakdown)
	assert.Equal(t, 4, s.TotalRated)
	assert.Equal(t, 4, s.TotalActivities)
}

func TestAggregate_NoRatedEventsIsUndetermined(t *testing.T) {
	s := Aggregate(Events(timing.NotRated, timing.NotRated))

	assert.Equal(t, Undetermined, s.AverageRating)
	assert.Equal(t, 0, s.TotalRated)
	assert.Equal(t, 2, s.TotalActivities)
	assert.False(t, s.HasEnoughData())

	empty := Aggregate(nil)
	assert.Equal(t, Undetermined, empty.AverageRating)
	assert.Equal(t, 0, empty.TotalActivities)
}

func TestAggregate_UnratedStayInActivities(t *testing.T) {
	s := Aggregate(Events(timing.Late, timing.NotRated, timing.NotRated))

	assert.Equal(t, 1, s.TotalRated)
	assert.Equal(t, 3, s.TotalActivities)
	assert.Equal(t, 1.0, s.Score)
	assert.Equal(t, Poor, s.AverageRating)
}

func TestAggregate_Weights(t *testing.T) {
	s := Aggregate([]Event{{Rating: timing.Early, Weight: 3}, {Rating: timing.Late, Weight: 1}})
	// (3*3 + 1*1) / 4 = 2.5
	assert.Equal(t, 2.5, s.Score)
	assert.Equal(t, Excellent, s.AverageRating)

	zeroWeight := Aggregate([]Event{{Rating: timing.OnTime}})
	assert.Equal(t, 2.0, zeroWeight.Score)
}

func TestBucketFor_Thresholds(t *testing.T) {
	cases := map[float64]Bucket{
		3.0:  Excellent,
		2.5:  Excellent,
		2.49: Good,
		1.8:  Good,
		1.79: Fair,
		1.2:  Fair,
		1.19: Poor,
		1.0:  Poor,
	}
	for score, want := range cases {
		assert.Equal(t, want, BucketFor(score), "score %v", score)
	}
}

func TestMerge_DoesNotAverageBuckets(t *testing.T) {
	contributions := Events(timing.Early, timing.Early, timing.Early)
	loans := Events(timing.Late)

	// Averaging the two bucket scores (3 and 1) would give 2.0; merging gives 2.5.
	combined := Merge(contributions, loans)
	assert.Equal(t, 2.5, combined.Score)
	assert.Equal(t, Excellent, combined.AverageRating)
	assert.Equal(t, 4, combined.TotalRated)
}
