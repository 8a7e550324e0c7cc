package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDifficulty = errors.New("model: invalid task difficulty")
	ErrInvalidDueTime    = errors.New("model: invalid due time")
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

func ParseDifficulty(input string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(input)))
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, input)
	}
	return d, nil
}

// PointsTable maps a difficulty to the points a task is worth. The value is
// copied onto the task when it is created, so edits here never touch
// existing tasks.
var PointsTable = map[Difficulty]int{
	DifficultyEasy:   1,
	DifficultyMedium: 3,
	DifficultyHard:   5,
}

// NewStreakRecordBonus is awarded each time the current streak passes the
// best streak so far.
const NewStreakRecordBonus = 10

func PointsFor(d Difficulty) (int, error) {
	p, ok := PointsTable[d]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDifficulty, d)
	}
	return p, nil
}

type Task struct {
	ID              string         `json:"id,omitempty"`
	Text            string         `json:"text"`
	Completed       bool           `json:"completed"`
	Difficulty      Difficulty     `json:"difficulty"`
	Points          int            `json:"points"`
	CreatedAt       int64          `json:"createdAt"`
	IsRecurring     bool           `json:"isRecurring"`
	RecurrenceType  RecurrenceType `json:"recurrenceType,omitempty"`
	RecurrenceValue int            `json:"recurrenceValue,omitempty"`
	DueTime         string         `json:"dueTime,omitempty"`
}

// CreatedTime converts the millisecond creation stamp.
func (t Task) CreatedTime() time.Time {
	return time.UnixMilli(t.CreatedAt)
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		return &ValidationError{Field: "text", Message: "task text is required"}
	}
	if !t.Difficulty.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, t.Difficulty)
	}
	if t.IsRecurring {
		rule := Recurrence{Type: t.RecurrenceType, Value: t.RecurrenceValue}
		if err := rule.Validate(); err != nil {
			return err
		}
	}
	if t.DueTime != "" {
		if _, _, err := ParseDueTime(t.DueTime); err != nil {
			return err
		}
	}
	return nil
}

// DueAt places the task's HH:MM due time on the calendar day of day.
func (t Task) DueAt(day time.Time) (time.Time, bool) {
	if t.DueTime == "" {
		return time.Time{}, false
	}
	h, m, err := ParseDueTime(t.DueTime)
	if err != nil {
		return time.Time{}, false
	}
	y, mo, d := day.Date()
	return time.Date(y, mo, d, h, m, 0, 0, day.Location()), true
}

func ParseDueTime(raw string) (int, int, error) {
	tm, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidDueTime, raw)
	}
	return tm.Hour(), tm.Minute(), nil
}

type ArchivedTask struct {
	Task
	ArchivedDate string `json:"archivedDate"`
}
