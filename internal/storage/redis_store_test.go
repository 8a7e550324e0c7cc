package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/streakd/internal/model"
)

func setupRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, "streakd", "mock_user_123"), mr
}

func TestRedisFetchMissingTree(t *testing.T) {
	store, _ := setupRedis(t)
	ctx := context.Background()

	tree, exists, err := store.Fetch(ctx)
	require.NoError(t, err)
	require.False(t, exists)
	require.Empty(t, tree.Tasks)
}

func TestRedisSeedAndFetch(t *testing.T) {
	store, mr := setupRedis(t)
	ctx := context.Background()
	want := TreeFromState(sampleState())

	require.NoError(t, store.Seed(ctx, want))

	got, exists, err := store.Fetch(ctx)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, want.Stats, got.Stats)
	require.Len(t, got.Tasks, 2)
	require.Equal(t, "Run", got.Tasks["t2"].Text)
	require.Equal(t, "t2", got.Tasks["t2"].ID)
	require.Equal(t, want.Archive, got.Archive)
	require.Equal(t, want.PointsHistory, got.PointsHistory)

	raw := mr.HGet("streakd:users:mock_user_123:tasks", "t2")
	require.NotContains(t, raw, `"id"`)
}

func TestRedisSeedReplacesPreviousTree(t *testing.T) {
	store, _ := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx, TreeFromState(sampleState())))
	require.NoError(t, store.Seed(ctx, RemoteTree{Tasks: map[string]model.Task{
		"t9": {Text: "Only", Difficulty: model.DifficultyEasy, Points: 1},
	}}))

	got, _, err := store.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	require.Contains(t, got.Tasks, "t9")
	require.Empty(t, got.Archive)
	require.Zero(t, got.Stats.TotalPoints)
}

func TestRedisNarrowWrites(t *testing.T) {
	store, _ := setupRedis(t)
	ctx := context.Background()

	task := model.Task{ID: "a", Text: "Read", Difficulty: model.DifficultyMedium, Points: 3, CreatedAt: 10}
	require.NoError(t, store.PutTask(ctx, task))
	require.NoError(t, store.PutStats(ctx, Stats{CurrentStreak: 2, MaxStreak: 3, TotalPoints: 9}))
	require.NoError(t, store.PutStreakHistory(ctx, []model.StreakEntry{{Date: "2026-02-01", Streak: 3}}))

	got, exists, err := store.Fetch(ctx)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, task, got.Tasks["a"])
	require.Equal(t, 9, got.Stats.TotalPoints)
	require.Len(t, got.StreakHistory, 1)

	require.NoError(t, store.DeleteTask(ctx, "a"))
	got, _, err = store.Fetch(ctx)
	require.NoError(t, err)
	require.Empty(t, got.Tasks)
}

func TestRedisSubscribeDeliversSnapshots(t *testing.T) {
	store, _ := setupRedis(t)
	ctx := context.Background()

	var mu sync.Mutex
	var trees []RemoteTree
	sub, err := store.Subscribe(ctx, func(tree RemoteTree, _ bool) {
		mu.Lock()
		trees = append(trees, tree)
		mu.Unlock()
	}, func(err error) { t.Errorf("unexpected subscription error: %v", err) })
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, store.PutTask(ctx, model.Task{ID: "x", Text: "Walk", Difficulty: model.DifficultyEasy, Points: 1}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(trees) >= 2 && len(trees[len(trees)-1].Tasks) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisSubscriptionErrorReported(t *testing.T) {
	store, mr := setupRedis(t)
	ctx := context.Background()

	errs := make(chan error, 1)
	sub, err := store.Subscribe(ctx, func(RemoteTree, bool) {}, func(err error) { errs <- err })
	require.NoError(t, err)
	defer sub.Close()

	time.Sleep(50 * time.Millisecond)
	mr.Close()

	select {
	case err := <-errs:
		var rerr *RemoteIOError
		require.ErrorAs(t, err, &rerr)
	case <-time.After(3 * time.Second):
		t.Fatal("expected subscription error")
	}
}

func TestRedisCloseIsIdempotent(t *testing.T) {
	store, _ := setupRedis(t)

	sub, err := store.Subscribe(context.Background(), func(RemoteTree, bool) {}, func(error) {})
	require.NoError(t, err)
	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
}
