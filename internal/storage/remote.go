package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sandeepkv93/streakd/internal/model"
)

var ErrRemoteUnavailable = errors.New("storage: remote store not configured")

// RemoteIOError wraps any failure talking to the remote store. It is
// reported to callers but never rolls back in-memory state.
type RemoteIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *RemoteIOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("storage: remote %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("storage: remote %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RemoteIOError) Unwrap() error { return e.Err }

type Stats struct {
	CurrentStreak int `json:"currentStreak"`
	MaxStreak     int `json:"maxStreak"`
	TotalPoints   int `json:"totalPoints"`
}

// RemoteTree is the per-user subtree held by the remote store:
// tasks/{id}, stats, archive, streakHistory and pointsHistory.
type RemoteTree struct {
	Tasks         map[string]model.Task
	Stats         Stats
	Archive       []model.ArchivedTask
	StreakHistory []model.StreakEntry
	PointsHistory []model.PointsEntry
}

func TreeFromState(st model.State) RemoteTree {
	tasks := make(map[string]model.Task, len(st.Tasks))
	for _, t := range st.Tasks {
		tasks[t.ID] = t
	}
	return RemoteTree{
		Tasks: tasks,
		Stats: Stats{
			CurrentStreak: st.Ledger.CurrentStreak,
			MaxStreak:     st.Ledger.MaxStreak,
			TotalPoints:   st.Ledger.TotalPoints,
		},
		Archive:       orEmpty(st.Archive),
		StreakHistory: orEmpty(st.Ledger.StreakHistory),
		PointsHistory: orEmpty(st.Ledger.PointsHistory),
	}
}

// Apply replaces the shared parts of st with the tree's content. Nothing is
// merged: the last snapshot received wins.
func (t RemoteTree) Apply(st *model.State) {
	tasks := make([]model.Task, 0, len(t.Tasks))
	for id, task := range t.Tasks {
		task.ID = id
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt != tasks[j].CreatedAt {
			return tasks[i].CreatedAt < tasks[j].CreatedAt
		}
		return tasks[i].ID < tasks[j].ID
	})
	st.Tasks = tasks
	st.Archive = orEmpty(append([]model.ArchivedTask(nil), t.Archive...))
	st.Ledger.CurrentStreak = t.Stats.CurrentStreak
	st.Ledger.MaxStreak = t.Stats.MaxStreak
	st.Ledger.TotalPoints = t.Stats.TotalPoints
	st.Ledger.StreakHistory = append([]model.StreakEntry(nil), t.StreakHistory...)
	st.Ledger.PointsHistory = append([]model.PointsEntry(nil), t.PointsHistory...)
}

type Subscription interface {
	Close() error
}

// SnapshotFunc receives the full remote tree. exists is false when the
// user's root has never been written.
type SnapshotFunc func(tree RemoteTree, exists bool)

// RemoteStore is a real-time tree store. Writes target the narrowest path;
// reads always return the whole tree.
type RemoteStore interface {
	Fetch(ctx context.Context) (RemoteTree, bool, error)
	Seed(ctx context.Context, tree RemoteTree) error
	PutTask(ctx context.Context, task model.Task) error
	DeleteTask(ctx context.Context, id string) error
	PutStats(ctx context.Context, stats Stats) error
	PutArchive(ctx context.Context, archive []model.ArchivedTask) error
	PutStreakHistory(ctx context.Context, entries []model.StreakEntry) error
	PutPointsHistory(ctx context.Context, entries []model.PointsEntry) error
	// Subscribe delivers the current tree right away and again after every
	// change until the subscription is closed. onError is called once when
	// the subscription breaks; no snapshots follow it.
	Subscribe(ctx context.Context, onChange SnapshotFunc, onError func(error)) (Subscription, error)
}
