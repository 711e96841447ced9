package feed

import (
	"fmt"
	"time"
)

const dayMillis = int64(24 * time.Hour / time.Millisecond)

// FormatDate renders t relative to now in whole-day buckets.
//
// Elapsed days are the ceiling of the millisecond difference divided by one
// day, so anything within the last 24 hours is "Today" and anything within
// the 24 hours before that is "Yesterday". Past a week the calendar date is
// shown instead. Timestamps in the future count as "Today".
func FormatDate(t, now time.Time) string {
	diff := now.Sub(t).Milliseconds()
	if diff < 0 {
		diff = 0
	}
	elapsed := (diff + dayMillis - 1) / dayMillis

	switch {
	case elapsed <= 1:
		return "Today"
	case elapsed == 2:
		return "Yesterday"
	case elapsed <= 7:
		return fmt.Sprintf("%d days ago", elapsed-1)
	default:
		return t.In(now.Location()).Format("1/2/2006")
	}
}
