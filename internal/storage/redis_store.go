package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/streakd/internal/model"
)

const (
	pathTasks         = "tasks"
	pathStats         = "stats"
	pathArchive       = "archive"
	pathStreakHistory = "streakHistory"
	pathPointsHistory = "pointsHistory"
)

// DialRedis connects to the server behind url and checks it answers.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("storage: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, &RemoteIOError{Op: "ping", Err: err}
	}
	return client, nil
}

// RedisStore lays the per-user tree out under root: a hash for tasks keyed
// by task id and one JSON string per other path. Every write is announced on
// root's changes channel; subscribers re-read the whole tree on each notice.
type RedisStore struct {
	client *redis.Client
	root   string
}

func NewRedisStore(client *redis.Client, prefix, userID string) *RedisStore {
	return &RedisStore{client: client, root: fmt.Sprintf("%s:users:%s", prefix, userID)}
}

func (r *RedisStore) key(path string) string { return r.root + ":" + path }

func (r *RedisStore) channel() string { return r.root + ":changes" }

func (r *RedisStore) stringKeys() []string {
	return []string{r.key(pathStats), r.key(pathArchive), r.key(pathStreakHistory), r.key(pathPointsHistory)}
}

func (r *RedisStore) Fetch(ctx context.Context) (RemoteTree, bool, error) {
	rawTasks, err := r.client.HGetAll(ctx, r.key(pathTasks)).Result()
	if err != nil {
		return RemoteTree{}, false, &RemoteIOError{Op: "fetch", Path: pathTasks, Err: err}
	}
	vals, err := r.client.MGet(ctx, r.stringKeys()...).Result()
	if err != nil {
		return RemoteTree{}, false, &RemoteIOError{Op: "fetch", Path: r.root, Err: err}
	}

	tree := RemoteTree{Tasks: make(map[string]model.Task, len(rawTasks))}
	exists := len(rawTasks) > 0
	for id, raw := range rawTasks {
		var task model.Task
		if err := json.Unmarshal([]byte(raw), &task); err != nil {
			return RemoteTree{}, false, &RemoteIOError{Op: "decode", Path: pathTasks + "/" + id, Err: err}
		}
		task.ID = id
		tree.Tasks[id] = task
	}

	targets := []struct {
		path string
		dst  any
	}{
		{pathStats, &tree.Stats},
		{pathArchive, &tree.Archive},
		{pathStreakHistory, &tree.StreakHistory},
		{pathPointsHistory, &tree.PointsHistory},
	}
	for i, target := range targets {
		raw, ok := vals[i].(string)
		if !ok {
			continue
		}
		exists = true
		if err := json.Unmarshal([]byte(raw), target.dst); err != nil {
			return RemoteTree{}, false, &RemoteIOError{Op: "decode", Path: target.path, Err: err}
		}
	}
	return tree, exists, nil
}

// Seed replaces the whole tree in one MULTI/EXEC block.
func (r *RedisStore) Seed(ctx context.Context, tree RemoteTree) error {
	fields := make(map[string]any, len(tree.Tasks))
	for id, task := range tree.Tasks {
		task.ID = ""
		b, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("storage: encode task %s: %w", id, err)
		}
		fields[id] = string(b)
	}
	values := map[string]any{
		r.key(pathStats):         tree.Stats,
		r.key(pathArchive):       orEmpty(tree.Archive),
		r.key(pathStreakHistory): orEmpty(tree.StreakHistory),
		r.key(pathPointsHistory): orEmpty(tree.PointsHistory),
	}
	encoded := make(map[string]string, len(values))
	for k, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("storage: encode %s: %w", k, err)
		}
		encoded[k] = string(b)
	}

	return r.write(ctx, "/", func() error {
		_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, append([]string{r.key(pathTasks)}, r.stringKeys()...)...)
			if len(fields) > 0 {
				pipe.HSet(ctx, r.key(pathTasks), fields)
			}
			for k, v := range encoded {
				pipe.Set(ctx, k, v, 0)
			}
			return nil
		})
		return err
	})
}

func (r *RedisStore) PutTask(ctx context.Context, task model.Task) error {
	id := task.ID
	task.ID = ""
	b, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("storage: encode task %s: %w", id, err)
	}
	return r.write(ctx, pathTasks+"/"+id, func() error {
		return r.client.HSet(ctx, r.key(pathTasks), id, string(b)).Err()
	})
}

func (r *RedisStore) DeleteTask(ctx context.Context, id string) error {
	return r.write(ctx, pathTasks+"/"+id, func() error {
		return r.client.HDel(ctx, r.key(pathTasks), id).Err()
	})
}

func (r *RedisStore) PutStats(ctx context.Context, stats Stats) error {
	return r.putJSON(ctx, pathStats, stats)
}

func (r *RedisStore) PutArchive(ctx context.Context, archive []model.ArchivedTask) error {
	return r.putJSON(ctx, pathArchive, orEmpty(archive))
}

func (r *RedisStore) PutStreakHistory(ctx context.Context, entries []model.StreakEntry) error {
	return r.putJSON(ctx, pathStreakHistory, orEmpty(entries))
}

func (r *RedisStore) PutPointsHistory(ctx context.Context, entries []model.PointsEntry) error {
	return r.putJSON(ctx, pathPointsHistory, orEmpty(entries))
}

func (r *RedisStore) putJSON(ctx context.Context, path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", path, err)
	}
	return r.write(ctx, path, func() error {
		return r.client.Set(ctx, r.key(path), string(b), 0).Err()
	})
}

func (r *RedisStore) write(ctx context.Context, path string, fn func() error) error {
	if err := fn(); err != nil {
		return &RemoteIOError{Op: "write", Path: path, Err: err}
	}
	if err := r.client.Publish(ctx, r.channel(), path).Err(); err != nil {
		return &RemoteIOError{Op: "publish", Path: path, Err: err}
	}
	return nil
}

type redisSubscription struct {
	ps     *redis.PubSub
	cancel context.CancelFunc
	done   chan struct{}
	closed atomic.Bool
}

// Subscribe listens on the changes channel. The subscription lives until
// Close is called or ctx ends.
func (r *RedisStore) Subscribe(ctx context.Context, onChange SnapshotFunc, onError func(error)) (Subscription, error) {
	ps := r.client.Subscribe(ctx, r.channel())
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, &RemoteIOError{Op: "subscribe", Path: r.channel(), Err: err}
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &redisSubscription{ps: ps, cancel: cancel, done: make(chan struct{})}

	deliver := func() bool {
		tree, exists, err := r.Fetch(subCtx)
		if err != nil {
			if !sub.closed.Load() && subCtx.Err() == nil {
				onError(err)
			}
			return false
		}
		if sub.closed.Load() {
			return false
		}
		onChange(tree, exists)
		return true
	}

	go func() {
		defer close(sub.done)
		if !deliver() {
			return
		}
		for {
			if _, err := ps.ReceiveMessage(subCtx); err != nil {
				if !sub.closed.Load() && subCtx.Err() == nil {
					onError(&RemoteIOError{Op: "subscribe", Path: r.channel(), Err: err})
				}
				return
			}
			if !deliver() {
				return
			}
		}
	}()
	return sub, nil
}

// Close stops the listener and waits for it to exit. It must not be called
// from inside a snapshot or error callback.
func (s *redisSubscription) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.cancel()
	err := s.ps.Close()
	<-s.done
	return err
}
