package daily

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/streakd/internal/model"
)

type EventKind string

const (
	EventStreakBroken EventKind = "streak_broken"
	EventNewRecord    EventKind = "new_record"
)

// Event is a user-visible notice produced by a reset. The engine only
// reports them; surfacing is up to the caller.
type Event struct {
	Kind   EventKind
	Date   string
	Streak int
	Bonus  int
}

func (e Event) Message() string {
	switch e.Kind {
	case EventStreakBroken:
		return fmt.Sprintf("streak of %d days ended on %s", e.Streak, e.Date)
	case EventNewRecord:
		return fmt.Sprintf("new streak record: %d days (+%d points)", e.Streak, e.Bonus)
	default:
		return string(e.Kind)
	}
}

type Input struct {
	LastCheckDate string
	Tasks         []model.Task
	Ledger        model.Ledger
}

type Result struct {
	Reset         bool
	LastCheckDate string
	Tasks         []model.Task
	Ledger        model.Ledger
	Events        []Event
}

// Evaluate runs the daily reset state machine. It is pure: inputs are never
// mutated and calling it again on the same day returns them unchanged.
func Evaluate(now time.Time, in Input) Result {
	if !IsNewDay(now, in.LastCheckDate) {
		return Result{
			LastCheckDate: in.LastCheckDate,
			Tasks:         in.Tasks,
			Ledger:        in.Ledger,
		}
	}

	today := Today(now)
	ledger := in.Ledger.Clone()
	events := make([]Event, 0, 2)

	if len(in.Tasks) > 0 {
		if allCompleted(in.Tasks) {
			ledger.CurrentStreak++
		} else {
			if ledger.CurrentStreak > 0 {
				ledger.StreakHistory = append(ledger.StreakHistory, model.StreakEntry{
					Date:   in.LastCheckDate,
					Streak: ledger.CurrentStreak,
				})
				events = append(events, Event{Kind: EventStreakBroken, Date: in.LastCheckDate, Streak: ledger.CurrentStreak})
			}
			ledger.CurrentStreak = 0
		}
	}

	if ledger.CurrentStreak > ledger.MaxStreak {
		ledger.MaxStreak = ledger.CurrentStreak
		ledger.Earn(model.NewStreakRecordBonus, today, fmt.Sprintf("new streak record: %d days", ledger.CurrentStreak))
		events = append(events, Event{Kind: EventNewRecord, Date: today, Streak: ledger.CurrentStreak, Bonus: model.NewStreakRecordBonus})
	}

	// Every completion flag clears, recurring or not. Recurrence only decides
	// whether a task is meant to stick around.
	tasks := make([]model.Task, len(in.Tasks))
	for i, t := range in.Tasks {
		t.Completed = false
		tasks[i] = t
	}

	return Result{
		Reset:         true,
		LastCheckDate: today,
		Tasks:         tasks,
		Ledger:        ledger,
		Events:        events,
	}
}

func allCompleted(tasks []model.Task) bool {
	for _, t := range tasks {
		if !t.Completed {
			return false
		}
	}
	return true
}
