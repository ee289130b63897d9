package recurrence

import (
	"fmt"
	"time"

	"github.com/huzaifanaeem1/todostream/internal/domain"
)

// NextDueDate computes the due date of the next recurring instance.
//
// Daily adds one day and weekly adds seven. Monthly moves to the same
// calendar day in the next month, capped at the last day of the target
// month when the source day does not exist there (Jan 31 -> Feb 28/29,
// Mar 31 -> Apr 30). Go's AddDate normalizes overflowing days into the
// following month, so the monthly case clamps explicitly.
func NextDueDate(due time.Time, frequency domain.RecurrenceFrequency) (time.Time, error) {
	switch frequency {
	case domain.FrequencyDaily:
		return due.AddDate(0, 0, 1), nil
	case domain.FrequencyWeekly:
		return due.AddDate(0, 0, 7), nil
	case domain.FrequencyMonthly:
		return addMonthClamped(due), nil
	default:
		return time.Time{}, fmt.Errorf("invalid recurrence frequency: %q", frequency)
	}
}

// addMonthClamped returns the same day next month, clamped to that month's
// last day.
func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()

	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, t.Location())
}
