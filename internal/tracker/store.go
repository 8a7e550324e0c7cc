package tracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/streakd/internal/daily"
	"github.com/sandeepkv93/streakd/internal/model"
)

// IDFunc returns a candidate task id. Candidates already in use are discarded.
type IDFunc func() string

// NewTaskID returns a time-ordered UUID.
func NewTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

const maxIDAttempts = 8

type AddInput struct {
	Text            string
	Difficulty      model.Difficulty
	IsRecurring     bool
	RecurrenceType  model.RecurrenceType
	RecurrenceValue int
	DueTime         string
}

// AddTask appends a new incomplete task. Its point value is copied from the
// difficulty table now and never recomputed.
func AddTask(st *model.State, in AddInput, now time.Time, newID IDFunc) (model.Task, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return model.Task{}, &model.ValidationError{Field: "text", Message: "task text is required"}
	}
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	points, err := model.PointsFor(difficulty)
	if err != nil {
		return model.Task{}, &model.ValidationError{Field: "difficulty", Message: err.Error()}
	}
	if newID == nil {
		newID = NewTaskID
	}

	task := model.Task{
		Text:       text,
		Difficulty: difficulty,
		Points:     points,
		CreatedAt:  now.UnixMilli(),
		DueTime:    strings.TrimSpace(in.DueTime),
	}
	if in.IsRecurring {
		task.IsRecurring = true
		task.RecurrenceType = in.RecurrenceType
		if task.RecurrenceType == "" {
			task.RecurrenceType = model.RecurrenceDaily
		}
		task.RecurrenceValue = in.RecurrenceValue
		if task.RecurrenceValue == 0 {
			task.RecurrenceValue = 1
		}
	}

	for i := 0; i < maxIDAttempts && task.ID == ""; i++ {
		if id := newID(); id != "" && !st.HasID(id) {
			task.ID = id
		}
	}
	if task.ID == "" {
		return model.Task{}, fmt.Errorf("tracker: could not allocate a unique task id")
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, &model.ValidationError{Field: "task", Message: err.Error()}
	}

	st.Tasks = append(st.Tasks, task)
	return task, nil
}

// ToggleTask flips completion. Completing earns the task's stored points with
// a history entry; undoing takes them back without one.
func ToggleTask(st *model.State, id string, now time.Time) (model.Task, error) {
	i, ok := st.FindTask(id)
	if !ok {
		return model.Task{}, &model.NotFoundError{Kind: "task", ID: id}
	}
	task := &st.Tasks[i]
	task.Completed = !task.Completed
	if task.Completed {
		st.Ledger.Earn(task.Points, daily.Today(now), "completed: "+task.Text)
	} else {
		st.Ledger.TotalPoints -= task.Points
	}
	return *task, nil
}

func EditTask(st *model.State, id, text string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Task{}, &model.ValidationError{Field: "text", Message: "task text is required"}
	}
	i, ok := st.FindTask(id)
	if !ok {
		return model.Task{}, &model.NotFoundError{Kind: "task", ID: id}
	}
	st.Tasks[i].Text = text
	return st.Tasks[i], nil
}

func ArchiveTask(st *model.State, id string, now time.Time) (model.ArchivedTask, error) {
	i, ok := st.FindTask(id)
	if !ok {
		return model.ArchivedTask{}, &model.NotFoundError{Kind: "task", ID: id}
	}
	archived := model.ArchivedTask{Task: st.Tasks[i], ArchivedDate: daily.Today(now)}
	st.Tasks = append(st.Tasks[:i:i], st.Tasks[i+1:]...)
	st.Archive = append(st.Archive, archived)
	return archived, nil
}

// RestoreTask moves an archived task back to the active list, keeping its id,
// points and completion flag.
func RestoreTask(st *model.State, id string) (model.Task, error) {
	i, ok := st.FindArchived(id)
	if !ok {
		return model.Task{}, &model.NotFoundError{Kind: "archived task", ID: id}
	}
	task := st.Archive[i].Task
	st.Archive = append(st.Archive[:i:i], st.Archive[i+1:]...)
	st.Tasks = append(st.Tasks, task)
	return task, nil
}

// DeleteArchived removes an archived task for good.
func DeleteArchived(st *model.State, id string) error {
	i, ok := st.FindArchived(id)
	if !ok {
		return &model.NotFoundError{Kind: "archived task", ID: id}
	}
	st.Archive = append(st.Archive[:i:i], st.Archive[i+1:]...)
	return nil
}
