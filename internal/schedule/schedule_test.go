package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/project-workflow/internal/model"
)

func TestNextDueOffsets(t *testing.T) {
	from := time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		frequency string
		want      time.Time
	}{
		{model.FreqDaily, from.AddDate(0, 0, 1)},
		{model.FreqWeekly, from.AddDate(0, 0, 7)},
		{model.FreqBiWeekly, from.AddDate(0, 0, 14)},
		{model.FreqMonthly, time.Date(2025, time.April, 10, 9, 30, 0, 0, time.UTC)},
		{model.FreqQuarterly, time.Date(2025, time.June, 10, 9, 30, 0, 0, time.UTC)},
		{model.FreqSemiAnnual, time.Date(2025, time.September, 10, 9, 30, 0, 0, time.UTC)},
		{model.FreqAnnual, time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.frequency, func(t *testing.T) {
			got := NextDue(tc.frequency, from)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.After(from), "recurring frequency must move the deadline forward")
		})
	}
}

func TestNextDueOnceAndUnknown(t *testing.T) {
	from := time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, from, NextDue(model.FreqOnce, from))
	assert.Equal(t, from, NextDue("", from))
	assert.Equal(t, from, NextDue("Fortnightly", from))
}

func TestNextDueMonthEndClamping(t *testing.T) {
	jan31 := time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC)

	// 2025 is not a leap year: Jan 31 + 1 month lands on Feb 28.
	assert.Equal(t, time.Date(2025, time.February, 28, 12, 0, 0, 0, time.UTC),
		NextDue(model.FreqMonthly, jan31))

	// Leap year keeps Feb 29 reachable.
	jan31leap := time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC),
		NextDue(model.FreqMonthly, jan31leap))

	// May 31 + 3 months = Aug 31, a valid date: no clamp applies.
	may31 := time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC),
		NextDue(model.FreqQuarterly, may31))

	// Semi-annual across the year boundary: Aug 31 + 6 months = Feb 28.
	aug31 := time.Date(2025, time.August, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
		NextDue(model.FreqSemiAnnual, aug31))
}

func TestNextDueAnnualLeapDay(t *testing.T) {
	feb29 := time.Date(2024, time.February, 29, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, time.February, 28, 8, 0, 0, 0, time.UTC),
		NextDue(model.FreqAnnual, feb29))
}
