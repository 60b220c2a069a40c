// Package performance folds timing ratings into a member's performance score.
package performance

import (
	"math"

	"chama-ledger/internal/domain/timing"
)

type Bucket string

const (
	Excellent    Bucket = "excellent"
	Good         Bucket = "good"
	Fair         Bucket = "fair"
	Poor         Bucket = "poor"
	Undetermined Bucket = "undetermined"
)

// Event is one classified payment. Weight <= 0 counts as 1.
type Event struct {
	Rating timing.Rating
	Weight int
}

type Breakdown struct {
	Early  int `json:"early"`
	OnTime int `json:"on_time"`
	Late   int `json:"late"`
}

type Summary struct {
	AverageRating   Bucket    `json:"average_rating"`
	Score           float64   `json:"score"`
	Breakdown       Breakdown `json:"breakdown"`
	TotalRated      int       `json:"total_rated"`
	TotalActivities int       `json:"total_activities"`
}

// HasEnoughData reports whether at least one activity was rated.
func (s Summary) HasEnoughData() bool { return s.TotalRated > 0 }

// Aggregate computes the weighted mean of rated events. Unrated events count
// toward TotalActivities only.
func Aggregate(events []Event) Summary {
	var (
		s      Summary
		points int
		weight int
	)
	s.TotalActivities = len(events)
	for _, e := range events {
		if !e.Rating.Rated() {
			continue
		}
		w := e.Weight
		if w <= 0 {
			w = 1
		}
		switch e.Rating {
		case timing.Early:
			s.Breakdown.Early++
		case timing.OnTime:
			s.Breakdown.OnTime++
		case timing.Late:
			s.Breakdown.Late++
		}
		s.TotalRated++
		points += e.Rating.Points() * w
		weight += w
	}
	if weight == 0 {
		s.AverageRating = Undetermined
		return s
	}
	mean := float64(points) / float64(weight)
	s.AverageRating = BucketFor(mean)
	s.Score = math.Round(mean*100) / 100
	return s
}

// Merge aggregates both sequences as one, so a combined rating is never an
// average of already-bucketed ratings.
func Merge(a, b []Event) Summary {
	all := make([]Event, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	return Aggregate(all)
}

// BucketFor maps a score in [1,3] to its bucket.
func BucketFor(score float64) Bucket {
	switch {
	case score >= 2.5:
		return Excellent
	case score >= 1.8:
		return Good
	case score >= 1.2:
		return Fair
	default:
		return Poor
	}
}

// Events builds unit-weight events from ratings.
func Events(ratings ...timing.Rating) []Event {
	out := make([]Event, len(ratings))
	for i, r := range ratings {
		out[i] = Event{Rating: r, Weight: 1}
	}
	return out
}
