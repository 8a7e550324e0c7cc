package model

import (
	"errors"
	"testing"
	"time"
)

func TestRecurrenceDaily(t *testing.T) {
	rule := Recurrence{Type: RecurrenceDaily, Value: 2}
	from := time.Date(2026, 2, 5, 9, 0, 0, 0, time.UTC)
	next, err := rule.NextAfter(from)
	if err != nil {
		t.Fatalf("next daily failed: %v", err)
	}
	if next.Format("2006-01-02 15:04") != "2026-02-07 00:00" {
		t.Fatalf("unexpected next occurrence: %s", next.Format(time.RFC3339))
	}
}

func TestRecurrenceWeekly(t *testing.T) {
	rule := Recurrence{Type: RecurrenceWeekly, Value: 2}
	from := time.Date(2026, 2, 10, 11, 0, 0, 0, time.UTC)
	next, err := rule.NextAfter(from)
	if err != nil {
		t.Fatalf("next weekly failed: %v", err)
	}
	if next.Format("2006-01-02") != "2026-02-24" {
		t.Fatalf("unexpected next occurrence: %s", next.Format(time.RFC3339))
	}
}

func TestRecurrenceMonthlyClampsToMonthEnd(t *testing.T) {
	rule := Recurrence{Type: RecurrenceMonthly, Value: 1}
	from := time.Date(2026, 1, 31, 17, 0, 0, 0, time.UTC)
	next, err := rule.NextAfter(from)
	if err != nil {
		t.Fatalf("next monthly failed: %v", err)
	}
	if next.Format("2006-01-02") != "2026-02-28" {
		t.Fatalf("unexpected next occurrence: %s", next.Format(time.RFC3339))
	}
}

func TestRecurrencePreview(t *testing.T) {
	rule := Recurrence{Type: RecurrenceDaily, Value: 3}
	list, err := rule.Preview(time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), 3)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	want := []string{"2026-02-08", "2026-02-11", "2026-02-14"}
	if len(list) != len(want) {
		t.Fatalf("expected %d preview items, got %d", len(want), len(list))
	}
	for i := range list {
		if got := list[i].Format("2006-01-02"); got != want[i] {
			t.Fatalf("preview[%d] got %s want %s", i, got, want[i])
		}
	}
}

func TestRecurrenceValidate(t *testing.T) {
	if err := (Recurrence{Type: RecurrenceDaily, Value: 0}).Validate(); !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
	if _, err := ParseRecurrenceType("yearly"); !errors.Is(err, ErrInvalidRecurrenceType) {
		t.Fatalf("expected ErrInvalidRecurrenceType, got %v", err)
	}
}
