package model

import (
	"errors"
	"testing"
	"time"
)

func TestTaskValidateSuccess(t *testing.T) {
	task := Task{
		ID:              "task-1",
		Text:            "Stretch for ten minutes",
		Difficulty:      DifficultyEasy,
		Points:          1,
		CreatedAt:       time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC).UnixMilli(),
		IsRecurring:     true,
		RecurrenceType:  RecurrenceDaily,
		RecurrenceValue: 1,
		DueTime:         "18:30",
	}
	if err := task.Validate(); err != nil {
		t.Fatalf("expected valid task, got error: %v", err)
	}
}

func TestTaskValidateBlankText(t *testing.T) {
	task := Task{ID: "task-1", Text: "   ", Difficulty: DifficultyHard}
	err := task.Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got: %v", err)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "text" {
		t.Fatalf("expected text validation error, got: %v", err)
	}
}

func TestTaskValidateInvalidEnums(t *testing.T) {
	task := Task{ID: "task-1", Text: "Bad", Difficulty: Difficulty("epic")}
	if err := task.Validate(); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got: %v", err)
	}

	task.Difficulty = DifficultyMedium
	task.IsRecurring = true
	task.RecurrenceType = RecurrenceType("hourly")
	task.RecurrenceValue = 1
	if err := task.Validate(); !errors.Is(err, ErrInvalidRecurrenceType) {
		t.Fatalf("expected ErrInvalidRecurrenceType, got: %v", err)
	}

	task.RecurrenceType = RecurrenceWeekly
	task.DueTime = "25:99"
	if err := task.Validate(); !errors.Is(err, ErrInvalidDueTime) {
		t.Fatalf("expected ErrInvalidDueTime, got: %v", err)
	}
}

func TestPointsForDifficulty(t *testing.T) {
	cases := map[Difficulty]int{DifficultyEasy: 1, DifficultyMedium: 3, DifficultyHard: 5}
	for d, want := range cases {
		got, err := PointsFor(d)
		if err != nil || got != want {
			t.Fatalf("PointsFor(%s) = %d, %v; want %d", d, got, err, want)
		}
	}
	if _, err := PointsFor(Difficulty("nope")); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty("  HARD ")
	if err != nil || d != DifficultyHard {
		t.Fatalf("ParseDifficulty = %q, %v", d, err)
	}
	if _, err := ParseDifficulty("legendary"); err == nil {
		t.Fatal("expected error for unknown difficulty")
	}
}

func TestTaskDueAt(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	day := time.Date(2026, 3, 4, 7, 15, 0, 0, loc)

	due, ok := Task{DueTime: "21:05"}.DueAt(day)
	if !ok {
		t.Fatal("expected due time")
	}
	if due.Format("2006-01-02 15:04") != "2026-03-04 21:05" || due.Location() != loc {
		t.Fatalf("unexpected due time: %s", due)
	}
	if _, ok := (Task{}).DueAt(day); ok {
		t.Fatal("expected no due time for empty DueTime")
	}
}
