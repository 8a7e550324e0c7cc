package model

import (
	"math"
	"time"
)

// DayLayout is the calendar-day key format used for check-in, archive and
// history dates.
const DayLayout = "2006-01-02"

func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

type StreakEntry struct {
	Date   string `json:"date"`
	Streak int    `json:"streak"`
}

type PointsEntry struct {
	Date   string `json:"date"`
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

// Ledger aggregates points and streak statistics. TotalPoints may drop below
// zero when a completion is undone after the points were spent.
type Ledger struct {
	CurrentStreak int           `json:"currentStreak"`
	MaxStreak     int           `json:"maxStreak"`
	TotalPoints   int           `json:"totalPoints"`
	StreakHistory []StreakEntry `json:"streakHistory"`
	PointsHistory []PointsEntry `json:"pointsHistory"`
}

// Level is derived from the point total and is never stored.
func (l Ledger) Level() int {
	return LevelForPoints(l.TotalPoints)
}

func LevelForPoints(total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(math.Sqrt(float64(total) / 100)))
}

func (l *Ledger) Earn(points int, day string, reason string) {
	l.TotalPoints += points
	l.PointsHistory = append(l.PointsHistory, PointsEntry{Date: day, Points: points, Reason: reason})
}

func (l Ledger) Clone() Ledger {
	out := l
	out.StreakHistory = append([]StreakEntry(nil), l.StreakHistory...)
	out.PointsHistory = append([]PointsEntry(nil), l.PointsHistory...)
	return out
}

// FilterPointsHistory returns entries whose date falls within [from, to].
// Empty bounds are open.
func FilterPointsHistory(entries []PointsEntry, from, to string) []PointsEntry {
	out := make([]PointsEntry, 0, len(entries))
	for _, e := range entries {
		if from != "" && e.Date < from {
			continue
		}
		if to != "" && e.Date > to {
			continue
		}
		out = append(out, e)
	}
	return out
}
