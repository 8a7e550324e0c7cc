package daily

import (
	"time"

	"github.com/sandeepkv93/streakd/internal/model"
)

// ResetHour is the hour of day at which a new calendar day starts.
const ResetHour = 0

// IsNewDay reports whether now falls on a later calendar day than the last
// check-in. An empty or unreadable lastCheckDate always counts as a new day.
// Days are compared on the calendar in now's location, not as elapsed hours.
func IsNewDay(now time.Time, lastCheckDate string) bool {
	if lastCheckDate == "" {
		return true
	}
	last, err := time.ParseInLocation(model.DayLayout, lastCheckDate, now.Location())
	if err != nil {
		return true
	}
	return dayStart(now).After(dayStart(last))
}

// Today returns the day key for now, shifted back a day when the clock has
// not yet reached ResetHour.
func Today(now time.Time) string {
	return model.DayKey(dayStart(now))
}

func dayStart(t time.Time) time.Time {
	shifted := t.Add(-ResetHour * time.Hour)
	y, m, d := shifted.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
