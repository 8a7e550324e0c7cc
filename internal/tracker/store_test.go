package tracker

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/streakd/internal/model"
)

var day1 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func seqIDs(ids ...string) IDFunc {
	i := 0
	return func() string {
		if i >= len(ids) {
			return ""
		}
		id := ids[i]
		i++
		return id
	}
}

func TestAddTaskSnapshotsPoints(t *testing.T) {
	st := model.NewState()

	task, err := AddTask(&st, AddInput{Text: "  Deep work  ", Difficulty: model.DifficultyHard}, day1, seqIDs("a"))
	require.NoError(t, err)
	require.Equal(t, "a", task.ID)
	require.Equal(t, "Deep work", task.Text)
	require.Equal(t, 5, task.Points)
	require.False(t, task.Completed)
	require.Equal(t, day1.UnixMilli(), task.CreatedAt)
	require.Len(t, st.Tasks, 1)

	old := model.PointsTable[model.DifficultyHard]
	model.PointsTable[model.DifficultyHard] = 50
	defer func() { model.PointsTable[model.DifficultyHard] = old }()

	_, err = ToggleTask(&st, "a", day1)
	require.NoError(t, err)
	require.Equal(t, 5, st.Ledger.TotalPoints)
}

func TestAddTaskDefaults(t *testing.T) {
	st := model.NewState()

	task, err := AddTask(&st, AddInput{Text: "Water plants", IsRecurring: true}, day1, seqIDs("r"))
	require.NoError(t, err)
	require.Equal(t, model.DifficultyMedium, task.Difficulty)
	require.Equal(t, 3, task.Points)
	require.Equal(t, model.RecurrenceDaily, task.RecurrenceType)
	require.Equal(t, 1, task.RecurrenceValue)
}

func TestAddTaskRejectsBlankText(t *testing.T) {
	st := model.NewState()

	_, err := AddTask(&st, AddInput{Text: "   "}, day1, seqIDs("a"))
	require.ErrorIs(t, err, model.ErrValidation)
	require.Empty(t, st.Tasks)
}

func TestAddTaskRejectsBadDueTime(t *testing.T) {
	st := model.NewState()

	_, err := AddTask(&st, AddInput{Text: "Call", DueTime: "25:99"}, day1, seqIDs("a"))
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Empty(t, st.Tasks)
}

func TestAddTaskSkipsTakenIDs(t *testing.T) {
	st := model.NewState()
	st.Tasks = []model.Task{{ID: "a", Text: "x", Difficulty: model.DifficultyEasy, Points: 1}}
	st.Archive = []model.ArchivedTask{{Task: model.Task{ID: "b", Text: "y", Difficulty: model.DifficultyEasy, Points: 1}}}

	task, err := AddTask(&st, AddInput{Text: "New"}, day1, seqIDs("a", "b", "c"))
	require.NoError(t, err)
	require.Equal(t, "c", task.ID)

	_, err = AddTask(&st, AddInput{Text: "Again"}, day1, seqIDs("a", "b", "c"))
	require.Error(t, err)
}

func TestNewTaskIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewTaskID()
		require.False(t, seen[id], fmt.Sprintf("duplicate id %s", id))
		seen[id] = true
	}
}

func TestToggleAsymmetry(t *testing.T) {
	st := model.NewState()
	task, err := AddTask(&st, AddInput{Text: "Read", Difficulty: model.DifficultyMedium}, day1, seqIDs("a"))
	require.NoError(t, err)

	done, err := ToggleTask(&st, task.ID, day1)
	require.NoError(t, err)
	require.True(t, done.Completed)
	require.Equal(t, 3, st.Ledger.TotalPoints)
	require.Equal(t, []model.PointsEntry{{Date: "2026-03-02", Points: 3, Reason: "completed: Read"}}, st.Ledger.PointsHistory)

	undone, err := ToggleTask(&st, task.ID, day1)
	require.NoError(t, err)
	require.False(t, undone.Completed)
	require.Equal(t, 0, st.Ledger.TotalPoints)
	require.Len(t, st.Ledger.PointsHistory, 1)
}

func TestTogglePointsCanGoNegative(t *testing.T) {
	st := model.NewState()
	_, _ = AddTask(&st, AddInput{Text: "Gym", Difficulty: model.DifficultyHard}, day1, seqIDs("a"))
	_, _ = ToggleTask(&st, "a", day1)
	st.Ledger.TotalPoints = 0 // spent in the shop

	_, err := ToggleTask(&st, "a", day1)
	require.NoError(t, err)
	require.Equal(t, -5, st.Ledger.TotalPoints)
	require.Equal(t, 0, st.Level())
}

func TestUnknownIDsAreNotFound(t *testing.T) {
	st := model.NewState()
	before := st.Clone()

	_, err := ToggleTask(&st, "nope", day1)
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = EditTask(&st, "nope", "text")
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = ArchiveTask(&st, "nope", day1)
	require.ErrorIs(t, err, model.ErrNotFound)
	_, err = RestoreTask(&st, "nope")
	require.ErrorIs(t, err, model.ErrNotFound)
	require.ErrorIs(t, DeleteArchived(&st, "nope"), model.ErrNotFound)

	require.Equal(t, before, st)
}

func TestEditTask(t *testing.T) {
	st := model.NewState()
	_, _ = AddTask(&st, AddInput{Text: "Draft", Difficulty: model.DifficultyEasy}, day1, seqIDs("a"))

	_, err := EditTask(&st, "a", "  ")
	require.ErrorIs(t, err, model.ErrValidation)
	require.Equal(t, "Draft", st.Tasks[0].Text)

	edited, err := EditTask(&st, "a", " Final ")
	require.NoError(t, err)
	require.Equal(t, "Final", edited.Text)
	require.Equal(t, 1, edited.Points)
}

func TestArchiveRestoreRoundTrip(t *testing.T) {
	st := model.NewState()
	_, _ = AddTask(&st, AddInput{Text: "One", Difficulty: model.DifficultyEasy}, day1, seqIDs("a"))
	_, _ = AddTask(&st, AddInput{Text: "Two", Difficulty: model.DifficultyHard}, day1, seqIDs("b"))
	_, _ = ToggleTask(&st, "b", day1)

	archived, err := ArchiveTask(&st, "b", day1.Add(24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, "2026-03-03", archived.ArchivedDate)
	require.Len(t, st.Tasks, 1)
	require.Len(t, st.Archive, 1)

	// the archived id stays reserved
	_, err = AddTask(&st, AddInput{Text: "Three"}, day1, seqIDs("b", "c"))
	require.NoError(t, err)
	_, taken := st.FindTask("b")
	require.False(t, taken)

	restored, err := RestoreTask(&st, "b")
	require.NoError(t, err)
	require.Equal(t, "b", restored.ID)
	require.Equal(t, 5, restored.Points)
	require.True(t, restored.Completed)
	require.Empty(t, st.Archive)
	require.Len(t, st.Tasks, 3)
}

func TestDeleteArchived(t *testing.T) {
	st := model.NewState()
	_, _ = AddTask(&st, AddInput{Text: "Old"}, day1, seqIDs("a"))
	_, _ = ArchiveTask(&st, "a", day1)

	require.NoError(t, DeleteArchived(&st, "a"))
	require.Empty(t, st.Archive)
	require.False(t, st.HasID("a"))
}
