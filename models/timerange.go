package models

import "time"

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

// NewTimeRange builds a range, rejecting zero-length and inverted intervals.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, NewValidationError("start time must be before end time")
	}
	return TimeRange{Start: start, End: end}, nil
}

// Overlaps reports whether two ranges share any instant. Touching endpoints
// (one ends exactly when the other begins) do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
