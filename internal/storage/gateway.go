package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sandeepkv93/streakd/internal/model"
)

// Part names one slice of the state for Save.
type Part uint8

const (
	PartTasks Part = 1 << iota
	PartStats
	PartArchive
	PartStreakHistory
	PartPointsHistory
	// PartDevice covers settings, lastCheckDate, shop items and the profile.
	PartDevice

	PartAll = PartTasks | PartStats | PartArchive | PartStreakHistory | PartPointsHistory | PartDevice
)

// Change tells Save what a mutation touched. TaskIDs narrows PartTasks to
// single records; an id that is no longer in the state is deleted remotely.
// An empty TaskIDs with PartTasks set rewrites every active task.
type Change struct {
	Parts   Part
	TaskIDs []string
}

func (c Change) Has(p Part) bool { return c.Parts&p != 0 }

// Listener receives what the gateway loads and what the remote subscription
// produces. Replace is called by Load and SetRemoteSync before any snapshot
// is delivered. ApplyRemote and Fallback arrive on the subscription
// goroutine, and Load, SetRemoteSync and Close wait for that goroutine, so
// they must not be called while holding a lock the listener methods take.
type Listener interface {
	CurrentState() model.State
	Replace(st model.State)
	ApplyRemote(tree RemoteTree)
	Fallback(st model.State, err error)
}

// LoadResult carries the loaded state. Fallback is set when remote sync was
// on but the remote store could not be reached; the setting has then been
// switched off and State comes from the local store.
type LoadResult struct {
	State    model.State
	Remote   bool
	Fallback error
}

type GatewayOption func(*Gateway)

func WithRemote(remote RemoteStore) GatewayOption {
	return func(g *Gateway) { g.remote = remote }
}

func WithLogger(logger *zap.Logger) GatewayOption {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) GatewayOption {
	return func(g *Gateway) { g.metrics = m }
}

// Gateway is the only persistence entry point. It decides per call whether
// state goes to the local snapshot or the remote tree, so callers never
// look at the sync setting themselves.
type Gateway struct {
	local   *LocalStore
	remote  RemoteStore
	logger  *zap.Logger
	metrics *Metrics

	mu       sync.Mutex
	listener Listener
	active   bool
	sub      Subscription
}

func NewGateway(local *LocalStore, opts ...GatewayOption) *Gateway {
	g := &Gateway{local: local, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) SetListener(l Listener) {
	g.mu.Lock()
	g.listener = l
	g.mu.Unlock()
}

func (g *Gateway) RemoteConfigured() bool { return g.remote != nil }

// RemoteActive reports whether the remote tree is the current source of truth.
func (g *Gateway) RemoteActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// Load reads the local snapshot and, when remote sync is enabled, replaces
// its shared parts with the remote tree. A missing remote tree is seeded
// from the local state once; a populated one is never overwritten here.
func (g *Gateway) Load(ctx context.Context) (LoadResult, error) {
	g.closeSubscription()

	st, err := g.local.Load(ctx)
	if err != nil {
		return LoadResult{}, err
	}
	if !st.Settings.RemoteSyncEnabled {
		g.setActive(false)
		g.replace(st)
		return LoadResult{State: st}, nil
	}
	if g.remote == nil {
		return g.degrade(ctx, st, ErrRemoteUnavailable)
	}

	tree, exists, err := g.remote.Fetch(ctx)
	if err != nil {
		return g.degrade(ctx, st, err)
	}
	if exists {
		tree.Apply(&st)
	} else {
		if err := g.remote.Seed(ctx, TreeFromState(st)); err != nil {
			return g.degrade(ctx, st, err)
		}
		g.countSeed()
		g.logger.Info("seeded remote tree from local state", zap.Int("tasks", len(st.Tasks)))
	}

	g.setActive(true)
	g.replace(st)
	sub, err := g.remote.Subscribe(context.WithoutCancel(ctx), g.onSnapshot, g.onError)
	if err != nil {
		return g.degrade(ctx, st, err)
	}
	g.mu.Lock()
	g.sub = sub
	g.mu.Unlock()
	if g.metrics != nil {
		g.metrics.RemoteActive.Set(1)
	}
	return LoadResult{State: st, Remote: true}, nil
}

// degrade turns remote sync off after a failed remote load.
func (g *Gateway) degrade(ctx context.Context, st model.State, cause error) (LoadResult, error) {
	g.setActive(false)
	g.countRemoteError("load")
	g.logger.Error("remote load failed, using local storage", zap.Error(cause))
	st.Settings.RemoteSyncEnabled = false
	if err := g.local.SaveDevice(ctx, st); err != nil {
		return LoadResult{}, err
	}
	g.replace(st)
	return LoadResult{State: st, Fallback: cause}, nil
}

// Save persists st. Local failures are returned as is. Remote failures are
// logged, counted and returned joined; st is never rolled back.
func (g *Gateway) Save(ctx context.Context, st model.State, change Change) error {
	start := time.Now()
	if !g.RemoteActive() {
		err := g.local.Save(ctx, st)
		g.observeSave("local", start)
		return err
	}

	if change.Has(PartDevice) {
		if err := g.local.SaveDevice(ctx, st); err != nil {
			return err
		}
	}

	var errs []error
	record := func(op string, err error) {
		if err == nil {
			return
		}
		var rerr *RemoteIOError
		if !errors.As(err, &rerr) {
			err = &RemoteIOError{Op: op, Err: err}
		}
		g.countRemoteError(op)
		g.logger.Warn("remote write failed", zap.String("op", op), zap.String("path", pathOf(err)), zap.Error(err))
		errs = append(errs, err)
	}

	if change.Parts == PartAll {
		record("seed", g.remote.Seed(ctx, TreeFromState(st)))
		g.observeSave("remote", start)
		return errors.Join(errs...)
	}

	if change.Has(PartTasks) {
		if len(change.TaskIDs) == 0 {
			for _, task := range st.Tasks {
				record("put_task", g.remote.PutTask(ctx, task))
			}
		}
		for _, id := range change.TaskIDs {
			if i, ok := st.FindTask(id); ok {
				record("put_task", g.remote.PutTask(ctx, st.Tasks[i]))
			} else {
				record("delete_task", g.remote.DeleteTask(ctx, id))
			}
		}
	}
	if change.Has(PartStats) {
		record("put_stats", g.remote.PutStats(ctx, TreeFromState(st).Stats))
	}
	if change.Has(PartArchive) {
		record("put_archive", g.remote.PutArchive(ctx, st.Archive))
	}
	if change.Has(PartStreakHistory) {
		record("put_streak_history", g.remote.PutStreakHistory(ctx, st.Ledger.StreakHistory))
	}
	if change.Has(PartPointsHistory) {
		record("put_points_history", g.remote.PutPointsHistory(ctx, st.Ledger.PointsHistory))
	}
	g.observeSave("remote", start)
	return errors.Join(errs...)
}

// SetRemoteSync switches backends. Turning sync on writes st locally and
// reloads through the remote store, seeding it if empty. Turning it off
// drops the subscription and writes st through the local store.
func (g *Gateway) SetRemoteSync(ctx context.Context, enabled bool, st model.State) (LoadResult, error) {
	if !enabled {
		g.closeSubscription()
		g.setActive(false)
		st.Settings.RemoteSyncEnabled = false
		if err := g.local.Save(ctx, st); err != nil {
			return LoadResult{}, err
		}
		g.logger.Info("remote sync disabled")
		g.replace(st)
		return LoadResult{State: st}, nil
	}
	if g.remote == nil {
		return LoadResult{}, ErrRemoteUnavailable
	}
	st.Settings.RemoteSyncEnabled = true
	if err := g.local.Save(ctx, st); err != nil {
		return LoadResult{}, err
	}
	g.logger.Info("remote sync enabled")
	return g.Load(ctx)
}

// Close drops the remote subscription, if any.
func (g *Gateway) Close() error {
	g.closeSubscription()
	g.setActive(false)
	return nil
}

func (g *Gateway) onSnapshot(tree RemoteTree, exists bool) {
	g.mu.Lock()
	l := g.listener
	active := g.active
	g.mu.Unlock()
	if !active || l == nil {
		return
	}
	if !exists {
		// Wiped remotely while we were listening.
		if err := g.remote.Seed(context.Background(), TreeFromState(l.CurrentState())); err != nil {
			g.countRemoteError("seed")
			g.logger.Warn("remote reseed failed", zap.Error(err))
			return
		}
		g.countSeed()
		return
	}
	if g.metrics != nil {
		g.metrics.Snapshots.Inc()
	}
	l.ApplyRemote(tree)
}

func (g *Gateway) onError(err error) {
	// Close waits for the subscription goroutine, which is the one calling us.
	go g.fallback(err)
}

func (g *Gateway) fallback(cause error) {
	g.mu.Lock()
	sub := g.sub
	wasActive := g.active
	l := g.listener
	g.sub = nil
	g.active = false
	g.mu.Unlock()
	if sub != nil {
		_ = sub.Close()
	}
	if !wasActive {
		return
	}
	if g.metrics != nil {
		g.metrics.Fallbacks.Inc()
		g.metrics.RemoteActive.Set(0)
	}
	g.countRemoteError("subscribe")
	g.logger.Error("remote listener failed, switched to local storage", zap.Error(cause))

	ctx := context.Background()
	st, err := g.local.Load(ctx)
	if err != nil {
		g.logger.Error("reload local state after fallback", zap.Error(err))
		return
	}
	st.Settings.RemoteSyncEnabled = false
	if err := g.local.SaveDevice(ctx, st); err != nil {
		g.logger.Error("persist settings after fallback", zap.Error(err))
	}
	if l != nil {
		l.Fallback(st, cause)
	}
}

// replace hands a freshly loaded state to the listener ahead of the first
// remote snapshot.
func (g *Gateway) replace(st model.State) {
	g.mu.Lock()
	l := g.listener
	g.mu.Unlock()
	if l != nil {
		l.Replace(st.Clone())
	}
}

func (g *Gateway) closeSubscription() {
	g.mu.Lock()
	sub := g.sub
	g.sub = nil
	g.mu.Unlock()
	if sub != nil {
		if err := sub.Close(); err != nil {
			g.logger.Debug("close remote subscription", zap.Error(err))
		}
	}
}

func (g *Gateway) setActive(active bool) {
	g.mu.Lock()
	g.active = active
	g.mu.Unlock()
	if g.metrics != nil && !active {
		g.metrics.RemoteActive.Set(0)
	}
}

func (g *Gateway) countSeed() {
	if g.metrics != nil {
		g.metrics.Seeds.Inc()
	}
}

func (g *Gateway) countRemoteError(op string) {
	if g.metrics != nil {
		g.metrics.RemoteErrors.WithLabelValues(op).Inc()
	}
}

func (g *Gateway) observeSave(mode string, start time.Time) {
	if g.metrics == nil {
		return
	}
	g.metrics.Saves.WithLabelValues(mode).Inc()
	g.metrics.SaveDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

func pathOf(err error) string {
	var rerr *RemoteIOError
	if errors.As(err, &rerr) {
		return rerr.Path
	}
	return ""
}
