package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
)

var (
	ErrInvalidRecurrenceType = errors.New("model: invalid recurrence type")
	ErrInvalidInterval       = errors.New("model: invalid recurrence interval")
)

func (r RecurrenceType) IsValid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

func ParseRecurrenceType(input string) (RecurrenceType, error) {
	r := RecurrenceType(strings.ToLower(strings.TrimSpace(input)))
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecurrenceType, input)
	}
	return r, nil
}

// Recurrence describes how often a recurring task comes back. Value is the
// interval in units of Type and defaults to 1.
type Recurrence struct {
	Type  RecurrenceType
	Value int
}

func (r Recurrence) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrenceType, r.Type)
	}
	if r.Value <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, r.Value)
	}
	return nil
}

func (r Recurrence) NextAfter(from time.Time) (time.Time, error) {
	if err := r.Validate(); err != nil {
		return time.Time{}, err
	}
	y, m, d := from.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, from.Location())
	switch r.Type {
	case RecurrenceDaily:
		return day.AddDate(0, 0, r.Value), nil
	case RecurrenceWeekly:
		return day.AddDate(0, 0, 7*r.Value), nil
	case RecurrenceMonthly:
		return addMonthsClamped(day, r.Value), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRecurrenceType, r.Type)
	}
}

func (r Recurrence) Preview(from time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return []time.Time{}, nil
	}
	out := make([]time.Time, 0, count)
	cursor := from
	for i := 0; i < count; i++ {
		next, err := r.NextAfter(cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, next)
		cursor = next
	}
	return out, nil
}

// addMonthsClamped keeps the day of month where possible and falls back to
// the last day of the target month (Jan 31 + 1 month = Feb 28).
func addMonthsClamped(day time.Time, months int) time.Time {
	y, m, d := day.Date()
	firstOfTarget := time.Date(y, m, 1, 0, 0, 0, 0, day.Location()).AddDate(0, months, 0)
	last := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	ty, tm, _ := firstOfTarget.Date()
	return time.Date(ty, tm, d, 0, 0, 0, 0, day.Location())
}
