package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/daily"
	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/shop"
	"github.com/sandeepkv93/streakd/internal/storage"
)

var ErrMalformedBundle = errors.New("tracker: malformed export bundle")

// Notifier receives due-time reminder requests. Scheduling the same task
// again replaces its pending reminder.
type Notifier interface {
	Schedule(taskID, title, body string, fireAt time.Time) error
	Cancel(taskID string)
}

type NoopNotifier struct{}

func (NoopNotifier) Schedule(string, string, string, time.Time) error { return nil }
func (NoopNotifier) Cancel(string) {}

type HapticKind string

const (
	HapticSuccess HapticKind = "success"
	HapticError   HapticKind = "error"
	HapticWarning HapticKind = "warning"
)

type Haptics interface {
	Trigger(kind HapticKind)
}

type NoopHaptics struct{}

func (NoopHaptics) Trigger(HapticKind) {}

type NoticeKind string

const (
	NoticeStreakBroken   NoticeKind = "streak_broken"
	NoticeNewRecord      NoticeKind = "new_record"
	NoticeLevelUp        NoticeKind = "level_up"
	NoticeRemoteFallback NoticeKind = "remote_fallback"
	NoticeRemoteError    NoticeKind = "remote_error"
)

// Notice is a non-blocking message for whoever renders the app.
type Notice struct {
	Kind    NoticeKind
	Message string
	At      time.Time
}

type Option func(*App)

func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(a *App) { a.notifier = n }
}

func WithHaptics(h Haptics) Option {
	return func(a *App) { a.haptics = h }
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithIDFunc(fn IDFunc) Option {
	return func(a *App) { a.newID = fn }
}

func WithCatalog(items []model.ShopItem) Option {
	return func(a *App) { a.catalog = items }
}

// WithNoticeHandler registers fn for notices. It is called without the app
// lock held, possibly from the remote subscription goroutine.
func WithNoticeHandler(fn func(Notice)) Option {
	return func(a *App) { a.onNotice = fn }
}

// WithChangeHandler registers fn to receive a copy of the state after every
// change, local or remote.
func WithChangeHandler(fn func(model.State)) Option {
	return func(a *App) { a.onChange = fn }
}

// App owns the application state. Mutations are serialised by mu and
// persisted after it is released, so two quick remote writes may land in
// either order.
type App struct {
	gw       *storage.Gateway
	now      func() time.Time
	notifier Notifier
	haptics  Haptics
	logger   *zap.Logger
	newID    IDFunc
	catalog  []model.ShopItem
	onNotice func(Notice)
	onChange func(model.State)

	mu    sync.Mutex
	state model.State

	remindMu sync.Mutex
	reminded map[string]reminderMark
}

// reminderMark records the reminder handed to the notifier for one due time.
type reminderMark struct {
	dueAt  time.Time
	fireAt time.Time
}

func New(gw *storage.Gateway, opts ...Option) *App {
	a := &App{
		gw:       gw,
		now:      time.Now,
		notifier: NoopNotifier{},
		haptics:  NoopHaptics{},
		logger:   zap.NewNop(),
		newID:    NewTaskID,
		state:    model.NewState(),
		reminded: make(map[string]reminderMark),
	}
	for _, opt := range opts {
		opt(a)
	}
	gw.SetListener(a)
	return a
}

// Start loads state through the gateway and runs the first evaluation.
func (a *App) Start(ctx context.Context) error {
	res, err := a.gw.Load(ctx)
	if err != nil {
		return fmt.Errorf("tracker: load state: %w", err)
	}
	st := a.Snapshot()

	a.logger.Info("state loaded",
		zap.Bool("remote", res.Remote),
		zap.Int("tasks", len(st.Tasks)),
		zap.Int("archived", len(st.Archive)),
	)
	if res.Fallback != nil {
		a.notify(NoticeRemoteFallback, "remote sync unavailable, using local storage: "+res.Fallback.Error())
	}
	return a.Evaluate(ctx)
}

// Run re-evaluates on every tick until ctx ends.
func (a *App) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.Evaluate(ctx); err != nil && !isRemote(err) {
				return err
			}
		}
	}
}

func (a *App) Close() error {
	return a.gw.Close()
}

// Evaluate runs the daily reset check and then reschedules reminders.
func (a *App) Evaluate(ctx context.Context) error {
	a.mu.Lock()
	now := a.now()
	levelBefore := a.state.Level()
	res := daily.Evaluate(now, daily.Input{
		LastCheckDate: a.state.LastCheckDate,
		Tasks:         a.state.Tasks,
		Ledger:        a.state.Ledger,
	})
	if res.Reset {
		a.state.Tasks = res.Tasks
		a.state.Ledger = res.Ledger
		a.state.LastCheckDate = res.LastCheckDate
	}
	snapshot := a.state.Clone()
	a.mu.Unlock()

	var err error
	if res.Reset {
		a.logger.Info("daily reset",
			zap.String("date", res.LastCheckDate),
			zap.Int("streak", snapshot.Ledger.CurrentStreak),
			zap.Int("events", len(res.Events)),
		)
		err = a.persist(ctx, snapshot, storage.Change{
			Parts: storage.PartTasks | storage.PartStats | storage.PartStreakHistory | storage.PartPointsHistory | storage.PartDevice,
		})
		for _, ev := range res.Events {
			kind := NoticeStreakBroken
			if ev.Kind == daily.EventNewRecord {
				kind = NoticeNewRecord
			}
			a.notify(kind, ev.Message())
		}
		a.checkLevel(levelBefore, snapshot)
		a.changed(snapshot)
	}
	a.scheduleReminders(snapshot, now)
	return err
}

func (a *App) Snapshot() model.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Clone()
}

// RemoteConfigured reports whether remote sync can be switched on at all.
func (a *App) RemoteConfigured() bool {
	return a.gw.RemoteConfigured()
}

func (a *App) Level() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.Level()
}

// PointsHistory returns ledger entries dated within [from, to]. Empty bounds
// are open.
func (a *App) PointsHistory(from, to string) []model.PointsEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return model.FilterPointsHistory(a.state.Ledger.PointsHistory, from, to)
}

func (a *App) AddTask(ctx context.Context, in AddInput) (model.Task, error) {
	var task model.Task
	snapshot, err := a.mutate(ctx, func(st *model.State, now time.Time) (storage.Change, error) {
		t, err := AddTask(st, in, now, a.newID)
		if err != nil {
			return storage.Change{}, err
		}
		task = t
		return storage.Change{Parts: storage.PartTasks, TaskIDs: []string{t.ID}}, nil
	})
	if snapshot != nil {
		a.scheduleReminders(*snapshot, a.now())
	}
	return task, err
}

func (a *App) ToggleTask(ctx context.Context, id string) (model.Task, error) {
	var task model.Task
	snapshot, err := a.mutate(ctx, func(st *model.State, now time.Time) (storage.Change, error) {
		t, err := ToggleTask(st, id, now)
		if err != nil {
			return storage.Change{}, err
		}
		task = t
		return storage.Change{
			Parts:   storage.PartTasks | storage.PartStats | storage.PartPointsHistory,
			TaskIDs: []string{id},
		}, nil
	})
	if snapshot == nil {
		return task, err
	}
	if task.Completed {
		a.buzz(*snapshot, HapticSuccess)
		a.cancelReminder(id)
	} else {
		a.buzz(*snapshot, HapticError)
		a.scheduleReminders(*snapshot, a.now())
	}
	return task, err
}

func (a *App) EditTask(ctx context.Context, id, text string) (model.Task, error) {
	var task model.Task
	snapshot, err := a.mutate(ctx, func(st *model.State, _ time.Time) (storage.Change, error) {
		t, err := EditTask(st, id, text)
		if err != nil {
			return storage.Change{}, err
		}
		task = t
		return storage.Change{Parts: storage.PartTasks, TaskIDs: []string{id}}, nil
	})
	if snapshot != nil {
		a.scheduleReminders(*snapshot, a.now())
	}
	return task, err
}

func (a *App) ArchiveTask(ctx context.Context, id string) (model.ArchivedTask, error) {
	var archived model.ArchivedTask
	snapshot, err := a.mutate(ctx, func(st *model.State, now time.Time) (storage.Change, error) {
		t, err := ArchiveTask(st, id, now)
		if err != nil {
			return storage.Change{}, err
		}
		archived = t
		return storage.Change{Parts: storage.PartTasks | storage.PartArchive, TaskIDs: []string{id}}, nil
	})
	if snapshot != nil {
		a.cancelReminder(id)
	}
	return archived, err
}

func (a *App) RestoreTask(ctx context.Context, id string) (model.Task, error) {
	var task model.Task
	snapshot, err := a.mutate(ctx, func(st *model.State, _ time.Time) (storage.Change, error) {
		t, err := RestoreTask(st, id)
		if err != nil {
			return storage.Change{}, err
		}
		task = t
		return storage.Change{Parts: storage.PartTasks | storage.PartArchive, TaskIDs: []string{id}}, nil
	})
	if snapshot != nil {
		a.scheduleReminders(*snapshot, a.now())
	}
	return task, err
}

func (a *App) DeleteArchived(ctx context.Context, id string) error {
	_, err := a.mutate(ctx, func(st *model.State, _ time.Time) (storage.Change, error) {
		if err := DeleteArchived(st, id); err != nil {
			return storage.Change{}, err
		}
		return storage.Change{Parts: storage.PartArchive}, nil
	})
	return err
}

// Purchase buys or re-equips a shop item. Rejected purchases change nothing
// and persist nothing.
func (a *App) Purchase(ctx context.Context, itemID string) (shop.Receipt, error) {
	var receipt shop.Receipt
	snapshot, err := a.mutate(ctx, func(st *model.State, _ time.Time) (storage.Change, error) {
		r, err := shop.Purchase(st, itemID)
		if err != nil {
			return storage.Change{}, err
		}
		receipt = r
		change := storage.Change{Parts: storage.PartDevice}
		if r.Spent > 0 {
			change.Parts |= storage.PartStats
		}
		return change, nil
	})
	switch {
	case snapshot != nil && receipt.Outcome == shop.OutcomePurchased:
		a.buzz(*snapshot, HapticSuccess)
	case errors.Is(err, model.ErrInsufficientPoints):
		a.buzz(a.Snapshot(), HapticWarning)
	}
	return receipt, err
}

func (a *App) SetHaptics(ctx context.Context, enabled bool) error {
	_, err := a.mutate(ctx, func(st *model.State, _ time.Time) (storage.Change, error) {
		st.Settings.HapticsEnabled = enabled
		return storage.Change{Parts: storage.PartDevice}, nil
	})
	return err
}

func (a *App) SetLeadTime(ctx context.Context, minutes int) error {
	snapshot, err := a.mutate(ctx, func(st *model.State, _ time.Time) (storage.Change, error) {
		if minutes <= 0 {
			return storage.Change{}, &model.ValidationError{Field: "notificationLeadTimeMinutes", Message: "lead time must be positive"}
		}
		st.Settings.NotificationLeadTimeMinutes = minutes
		return storage.Change{Parts: storage.PartDevice}, nil
	})
	if snapshot != nil {
		a.scheduleReminders(*snapshot, a.now())
	}
	return err
}

// SetRemoteSync switches persistence backends with the current state.
func (a *App) SetRemoteSync(ctx context.Context, enabled bool) error {
	current := a.Snapshot()
	if current.Settings.RemoteSyncEnabled == enabled && a.gw.RemoteActive() == enabled {
		return nil
	}
	res, err := a.gw.SetRemoteSync(ctx, enabled, current)
	if err != nil {
		return fmt.Errorf("tracker: switch remote sync: %w", err)
	}
	snapshot := a.Snapshot()

	if res.Fallback != nil {
		a.notify(NoticeRemoteFallback, "remote sync unavailable, using local storage: "+res.Fallback.Error())
	}
	a.changed(snapshot)
	a.scheduleReminders(snapshot, a.now())
	return nil
}

// Export serialises the whole state as one JSON object.
func (a *App) Export() ([]byte, error) {
	st := a.Snapshot()
	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tracker: export: %w", err)
	}
	return out, nil
}

// Import replaces the whole state with bundle. The sync setting of the
// running app is kept since it names the backend in use.
func (a *App) Import(ctx context.Context, bundle []byte) error {
	var in model.State
	if err := json.Unmarshal(bundle, &in); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBundle, err)
	}
	seen := make(map[string]struct{}, len(in.Tasks)+len(in.Archive))
	for _, t := range in.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task without id", ErrMalformedBundle)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate task id %q", ErrMalformedBundle, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	for _, t := range in.Archive {
		if t.ID == "" {
			return fmt.Errorf("%w: archived task without id", ErrMalformedBundle)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate task id %q", ErrMalformedBundle, t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	_, err := a.mutate(ctx, func(st *model.State, _ time.Time) (storage.Change, error) {
		next := model.NewState()
		next.Tasks = append(next.Tasks, in.Tasks...)
		next.Archive = append(next.Archive, in.Archive...)
		next.Ledger = in.Ledger.Clone()
		next.LastCheckDate = in.LastCheckDate
		next.Settings = in.Settings.Normalize()
		next.Settings.RemoteSyncEnabled = st.Settings.RemoteSyncEnabled
		next.ShopItems = shop.MergeCatalog(in.ShopItems, a.catalog)
		if in.Profile.Icon != "" {
			next.Profile = in.Profile
		}
		*st = next
		return storage.Change{Parts: storage.PartAll}, nil
	})
	return err
}

// CurrentState, Replace, ApplyRemote and Fallback make App the gateway's
// listener.

func (a *App) CurrentState() model.State {
	return a.Snapshot()
}

func (a *App) Replace(st model.State) {
	st.ShopItems = shop.MergeCatalog(st.ShopItems, a.catalog)
	a.mu.Lock()
	a.state = st
	a.mu.Unlock()
}

func (a *App) ApplyRemote(tree storage.RemoteTree) {
	a.mu.Lock()
	tree.Apply(&a.state)
	snapshot := a.state.Clone()
	a.mu.Unlock()

	a.logger.Debug("remote snapshot applied", zap.Int("tasks", len(snapshot.Tasks)))
	a.changed(snapshot)
	a.scheduleReminders(snapshot, a.now())
}

func (a *App) Fallback(st model.State, err error) {
	st.ShopItems = shop.MergeCatalog(st.ShopItems, a.catalog)
	a.mu.Lock()
	a.state = st
	snapshot := a.state.Clone()
	a.mu.Unlock()

	a.notify(NoticeRemoteFallback, "remote sync stopped, switched to local storage: "+err.Error())
	a.changed(snapshot)
	a.scheduleReminders(snapshot, a.now())
}

// mutate applies fn to a copy of the state and swaps it in only when fn
// succeeds. The returned snapshot is nil when nothing changed.
func (a *App) mutate(ctx context.Context, fn func(st *model.State, now time.Time) (storage.Change, error)) (*model.State, error) {
	a.mu.Lock()
	now := a.now()
	work := a.state.Clone()
	levelBefore := work.Level()
	change, err := fn(&work, now)
	if err != nil {
		a.mu.Unlock()
		a.logger.Debug("mutation rejected", zap.Error(err))
		return nil, err
	}
	a.state = work
	snapshot := work.Clone()
	a.mu.Unlock()

	err = a.persist(ctx, snapshot, change)
	a.checkLevel(levelBefore, snapshot)
	a.changed(snapshot)
	return &snapshot, err
}

func (a *App) persist(ctx context.Context, st model.State, change storage.Change) error {
	err := a.gw.Save(ctx, st, change)
	if err == nil {
		return nil
	}
	if isRemote(err) {
		a.notify(NoticeRemoteError, "could not save to remote store: "+err.Error())
		return err
	}
	return fmt.Errorf("tracker: save: %w", err)
}

// scheduleReminders hands the notifier one reminder per task and due time.
// A reminder whose fire time has come is never handed over again for the
// same due time; a pending one is replaced, so lead time changes apply.
func (a *App) scheduleReminders(st model.State, now time.Time) {
	a.remindMu.Lock()
	defer a.remindMu.Unlock()
	for id, mark := range a.reminded {
		if !mark.dueAt.After(now) {
			delete(a.reminded, id)
		}
	}
	for _, r := range model.DueReminders(st.Tasks, now, st.Settings.NotificationLeadTimeMinutes) {
		if err := r.Validate(); err != nil {
			a.logger.Warn("skip reminder", zap.String("task_id", r.TaskID), zap.Error(err))
			continue
		}
		if mark, ok := a.reminded[r.TaskID]; ok && mark.dueAt.Equal(r.DueAt) && !mark.fireAt.After(now) {
			continue
		}
		if err := a.notifier.Schedule(r.TaskID, r.Title, r.Body, r.FireAt); err != nil {
			a.logger.Warn("schedule reminder", zap.String("task_id", r.TaskID), zap.Error(err))
			continue
		}
		a.reminded[r.TaskID] = reminderMark{dueAt: r.DueAt, fireAt: r.FireAt}
	}
}

// cancelReminder drops a pending reminder. One that already fired stays
// marked so reopening the task does not repeat it.
func (a *App) cancelReminder(id string) {
	a.remindMu.Lock()
	if mark, ok := a.reminded[id]; ok && mark.fireAt.After(a.now()) {
		delete(a.reminded, id)
	}
	a.remindMu.Unlock()
	a.notifier.Cancel(id)
}

func (a *App) checkLevel(before int, st model.State) {
	if after := st.Level(); after > before {
		a.notify(NoticeLevelUp, fmt.Sprintf("level up: you reached level %d", after))
	}
}

func (a *App) buzz(st model.State, kind HapticKind) {
	if st.Settings.HapticsEnabled {
		a.haptics.Trigger(kind)
	}
}

func (a *App) notify(kind NoticeKind, msg string) {
	a.logger.Info("notice", zap.String("kind", string(kind)), zap.String("message", msg))
	if a.onNotice != nil {
		a.onNotice(Notice{Kind: kind, Message: msg, At: a.now()})
	}
}

func (a *App) changed(st model.State) {
	if a.onChange != nil {
		a.onChange(st)
	}
}

func isRemote(err error) bool {
	var rerr *storage.RemoteIOError
	return errors.As(err, &rerr)
}
