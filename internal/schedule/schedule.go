// Package schedule computes next-due timestamps for recurring task updates.
package schedule

import (
	"time"

	"github.com/iliyamo/project-workflow/internal/model"
)

// NextDue returns the next update deadline for a task with the given update
// frequency, counted from `from`.  One-time tasks and unknown frequencies
// have no recurring deadline, so `from` is returned unchanged.
//
// Month and year steps clamp to the last valid day of the target month
// (Jan 31 + 1 month = Feb 28/29), rather than letting the date normalize
// into the following month.
func NextDue(frequency string, from time.Time) time.Time {
	switch frequency {
	case model.FreqDaily:
		return from.AddDate(0, 0, 1)
	case model.FreqWeekly:
		return from.AddDate(0, 0, 7)
	case model.FreqBiWeekly:
		return from.AddDate(0, 0, 14)
	case model.FreqMonthly:
		return addMonthsClamped(from, 1)
	case model.FreqQuarterly:
		return addMonthsClamped(from, 3)
	case model.FreqSemiAnnual:
		return addMonthsClamped(from, 6)
	case model.FreqAnnual:
		return addMonthsClamped(from, 12)
	default: // Once and anything unrecognized
		return from
	}
}

// addMonthsClamped adds n months keeping the day of month where possible.
// time.AddDate would roll Jan 31 + 1 month into March; the scheduling rule
// here is to land on the last day of the shorter target month instead.
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	m := int(month) + n
	year += (m - 1) / 12
	month = time.Month((m-1)%12 + 1)

	if last := daysIn(year, month); day > last {
		day = last
	}
	h, mi, s := t.Clock()
	return time.Date(year, month, day, h, mi, s, t.Nanosecond(), t.Location())
}

// daysIn reports the number of days in the given month.
func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
