package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sandeepkv93/streakd/internal/model"
)

// MemoryStore is an in-process RemoteStore. Several gateways sharing one
// MemoryStore behave like devices signed in to the same account.
type MemoryStore struct {
	mu       sync.Mutex
	tree     RemoteTree
	exists   bool
	writeErr error
	seeds    int
	subs     map[*memorySubscription]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tree: RemoteTree{Tasks: map[string]model.Task{}},
		subs: make(map[*memorySubscription]struct{}),
	}
}

// SetWriteError makes every following write fail with err until it is
// cleared with nil.
func (m *MemoryStore) SetWriteError(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

// Seeds reports how many times the whole tree has been replaced.
func (m *MemoryStore) Seeds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seeds
}

// Fail breaks every open subscription with err.
func (m *MemoryStore) Fail(err error) {
	m.mu.Lock()
	subs := make([]*memorySubscription, 0, len(m.subs))
	for s := range m.subs {
		subs = append(subs, s)
	}
	m.subs = make(map[*memorySubscription]struct{})
	m.mu.Unlock()

	for _, s := range subs {
		select {
		case s.fail <- err:
		default:
		}
	}
}

// Reset drops the whole tree, as if the account had been wiped remotely.
func (m *MemoryStore) Reset() {
	m.mu.Lock()
	m.tree = RemoteTree{Tasks: map[string]model.Task{}}
	m.exists = false
	m.mu.Unlock()
	m.notify()
}

func (m *MemoryStore) Fetch(context.Context) (RemoteTree, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTree(m.tree), m.exists, nil
}

func (m *MemoryStore) Seed(_ context.Context, tree RemoteTree) error {
	return m.update("/", func() {
		m.tree = cloneTree(tree)
		m.seeds++
	})
}

func (m *MemoryStore) PutTask(_ context.Context, task model.Task) error {
	return m.update(pathTasks+"/"+task.ID, func() { m.tree.Tasks[task.ID] = task })
}

func (m *MemoryStore) DeleteTask(_ context.Context, id string) error {
	return m.update(pathTasks+"/"+id, func() { delete(m.tree.Tasks, id) })
}

func (m *MemoryStore) PutStats(_ context.Context, stats Stats) error {
	return m.update(pathStats, func() { m.tree.Stats = stats })
}

func (m *MemoryStore) PutArchive(_ context.Context, archive []model.ArchivedTask) error {
	return m.update(pathArchive, func() { m.tree.Archive = append([]model.ArchivedTask{}, archive...) })
}

func (m *MemoryStore) PutStreakHistory(_ context.Context, entries []model.StreakEntry) error {
	return m.update(pathStreakHistory, func() { m.tree.StreakHistory = append([]model.StreakEntry{}, entries...) })
}

func (m *MemoryStore) PutPointsHistory(_ context.Context, entries []model.PointsEntry) error {
	return m.update(pathPointsHistory, func() { m.tree.PointsHistory = append([]model.PointsEntry{}, entries...) })
}

func (m *MemoryStore) update(path string, fn func()) error {
	m.mu.Lock()
	if m.writeErr != nil {
		err := m.writeErr
		m.mu.Unlock()
		return &RemoteIOError{Op: "write", Path: path, Err: err}
	}
	fn()
	m.exists = true
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *MemoryStore) notify() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for s := range m.subs {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
}

type memorySubscription struct {
	store  *MemoryStore
	wake   chan struct{}
	fail   chan error
	quit   chan struct{}
	done   chan struct{}
	closed atomic.Bool
}

// Subscribe delivers snapshots from a dedicated goroutine. Notices that
// arrive while a snapshot is being handled collapse into one.
func (m *MemoryStore) Subscribe(ctx context.Context, onChange SnapshotFunc, onError func(error)) (Subscription, error) {
	sub := &memorySubscription{
		store: m,
		wake:  make(chan struct{}, 1),
		fail:  make(chan error, 1),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	m.mu.Lock()
	m.subs[sub] = struct{}{}
	m.mu.Unlock()
	sub.wake <- struct{}{}

	go func() {
		defer close(sub.done)
		for {
			select {
			case <-sub.quit:
				return
			case <-ctx.Done():
				return
			case err := <-sub.fail:
				if !sub.closed.Load() {
					onError(&RemoteIOError{Op: "subscribe", Path: "/", Err: err})
				}
				return
			case <-sub.wake:
				tree, exists, _ := m.Fetch(ctx)
				if sub.closed.Load() {
					return
				}
				onChange(tree, exists)
			}
		}
	}()
	return sub, nil
}

func (s *memorySubscription) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.store.mu.Lock()
	delete(s.store.subs, s)
	s.store.mu.Unlock()
	close(s.quit)
	<-s.done
	return nil
}

func cloneTree(t RemoteTree) RemoteTree {
	out := RemoteTree{
		Tasks:         make(map[string]model.Task, len(t.Tasks)),
		Stats:         t.Stats,
		Archive:       append([]model.ArchivedTask(nil), t.Archive...),
		StreakHistory: append([]model.StreakEntry(nil), t.StreakHistory...),
		PointsHistory: append([]model.PointsEntry(nil), t.PointsHistory...),
	}
	for id, task := range t.Tasks {
		task.ID = id
		out.Tasks[id] = task
	}
	return out
}
