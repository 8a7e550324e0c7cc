package model

import (
	"testing"
	"time"
)

func TestReminderValidate(t *testing.T) {
	rem := Reminder{TaskID: "task-1", FireAt: time.Date(2026, 2, 9, 13, 0, 0, 0, time.UTC)}
	if err := rem.Validate(); err != nil {
		t.Fatalf("expected valid reminder, got error: %v", err)
	}
	if err := (Reminder{TaskID: "task-1"}).Validate(); err == nil {
		t.Fatal("expected error for missing fire time")
	}
}

func TestDueRemindersLeadTime(t *testing.T) {
	now := time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "later", Text: "Call mom", DueTime: "18:00"},
		{ID: "soon", Text: "Pay rent", DueTime: "12:10"},
		{ID: "past", Text: "Breakfast", DueTime: "08:00"},
		{ID: "done", Text: "Gym", DueTime: "19:00", Completed: true},
		{ID: "none", Text: "Read"},
	}

	got := DueReminders(tasks, now, 30)
	if len(got) != 2 {
		t.Fatalf("expected 2 reminders, got %d: %+v", len(got), got)
	}
	if got[0].TaskID != "later" || got[0].FireAt.Format("15:04") != "17:30" {
		t.Fatalf("unexpected first reminder: %+v", got[0])
	}
	if got[1].TaskID != "soon" || !got[1].FireAt.Equal(now) {
		t.Fatalf("expected clamped reminder at now, got %+v", got[1])
	}
	if got[1].DueAt.Format("15:04") != "12:10" {
		t.Fatalf("expected due time 12:10, got %+v", got[1])
	}
}
