// Package features converts bid records into fixed-schema numeric feature
// vectors for anomaly detection.
package features

import "time"

// Fallback slot values used when a submission timestamp is missing or
// unparseable. Kept stable across releases: trained scalers depend on them.
const (
	FallbackHour    = 12
	FallbackWeekday = 2 // Wednesday, Monday = 0
)

// timestampLayouts are the accepted submission timestamp formats, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Record is a single bid as borrowed from the bid store. The core never
// mutates a Record; derived scores are returned to the caller.
type Record struct {
	ID           int64
	TenderID     int64
	CompanyName  string
	ContactEmail string
	BidAmount    float64
	Proposal     string
	SubmittedAt  string
}

// SubmissionTime parses the record's submission timestamp.
// The second return value is false when the field is absent or unparseable.
func (r Record) SubmissionTime() (time.Time, bool) {
	if r.SubmittedAt == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, r.SubmittedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// submissionSlots returns the hour-of-day and weekday feature slots,
// substituting the fixed fallback for bad timestamps.
func (r Record) submissionSlots() (hour, weekday float64) {
	t, ok := r.SubmissionTime()
	if !ok {
		return FallbackHour, FallbackWeekday
	}
	// Weekday indexed Monday = 0 to match the corpus the scaler was fit on.
	return float64(t.Hour()), float64((int(t.Weekday()) + 6) % 7)
}
