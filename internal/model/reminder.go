package model

import (
	"errors"
	"strings"
	"time"
)

// Reminder is a due-time notification request for one task.
type Reminder struct {
	TaskID string
	Title  string
	Body   string
	DueAt  time.Time
	FireAt time.Time
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.TaskID) == "" {
		return errors.New("model: reminder task id is required")
	}
	if r.FireAt.IsZero() {
		return errors.New("model: reminder fire time is required")
	}
	return nil
}

// DueReminders lists reminders for incomplete tasks whose due time is still
// ahead of now. Each fires leadMinutes before the due time, or at now when
// the lead window has already started.
func DueReminders(tasks []Task, now time.Time, leadMinutes int) []Reminder {
	if leadMinutes <= 0 {
		leadMinutes = DefaultNotificationLeadMinutes
	}
	lead := time.Duration(leadMinutes) * time.Minute
	out := make([]Reminder, 0)
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		due, ok := t.DueAt(now)
		if !ok || !due.After(now) {
			continue
		}
		fireAt := due.Add(-lead)
		if fireAt.Before(now) {
			fireAt = now
		}
		out = append(out, Reminder{
			TaskID: t.ID,
			Title:  "Task due soon",
			Body:   t.Text + " is due at " + t.DueTime,
			DueAt:  due,
			FireAt: fireAt,
		})
	}
	return out
}
