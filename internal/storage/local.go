package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/streakd/internal/model"
)

// Logical snapshot keys. Every save rewrites all of them.
const (
	KeyTasks         = "streakd.tasks"
	KeyArchive       = "streakd.archive"
	KeyStreak        = "streakd.currentStreak"
	KeyMaxStreak     = "streakd.maxStreak"
	KeyTotalPoints   = "streakd.totalPoints"
	KeyStreakHistory = "streakd.streakHistory"
	KeyPointsHistory = "streakd.pointsHistory"
	KeyLastCheck     = "streakd.lastCheckDate"
	KeySettings      = "streakd.settings"
	KeyShopItems     = "streakd.shopItems"
	KeyProfile       = "streakd.profile"
)

const sqliteTimeLayout = time.RFC3339Nano

// LocalStore keeps the application snapshot in a SQLite key/value table.
// Keys are written one statement at a time with no enclosing transaction;
// a crash mid-save can leave keys from two different saves.
type LocalStore struct {
	db *sql.DB
}

func NewLocalStore(db *sql.DB) (*LocalStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if err := MigrateUp(db); err != nil {
		return nil, err
	}
	return &LocalStore{db: db}, nil
}

func OpenLocal(path string) (*LocalStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store, err := NewLocalStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM snapshot WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *LocalStore) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshot (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) all(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM snapshot`)
	if err != nil {
		return nil, fmt.Errorf("storage: list snapshot: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("storage: scan snapshot: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Load reads the full snapshot. Missing keys fall back to defaults and
// numeric keys that fail to parse read as 0.
func (s *LocalStore) Load(ctx context.Context) (model.State, error) {
	raw, err := s.all(ctx)
	if err != nil {
		return model.State{}, err
	}

	st := model.NewState()
	if err := decodeJSON(raw, KeyTasks, &st.Tasks); err != nil {
		return model.State{}, err
	}
	if err := decodeJSON(raw, KeyArchive, &st.Archive); err != nil {
		return model.State{}, err
	}
	if err := decodeJSON(raw, KeyStreakHistory, &st.Ledger.StreakHistory); err != nil {
		return model.State{}, err
	}
	if err := decodeJSON(raw, KeyPointsHistory, &st.Ledger.PointsHistory); err != nil {
		return model.State{}, err
	}
	if err := decodeJSON(raw, KeySettings, &st.Settings); err != nil {
		return model.State{}, err
	}
	if err := decodeJSON(raw, KeyShopItems, &st.ShopItems); err != nil {
		return model.State{}, err
	}
	if err := decodeJSON(raw, KeyProfile, &st.Profile); err != nil {
		return model.State{}, err
	}
	st.Ledger.CurrentStreak = parseCount(raw[KeyStreak])
	st.Ledger.MaxStreak = parseCount(raw[KeyMaxStreak])
	st.Ledger.TotalPoints = parseCount(raw[KeyTotalPoints])
	st.LastCheckDate = strings.TrimSpace(raw[KeyLastCheck])
	st.Settings = st.Settings.Normalize()
	if st.Profile.Icon == "" {
		st.Profile = model.DefaultProfile()
	}
	if st.Tasks == nil {
		st.Tasks = []model.Task{}
	}
	if st.Archive == nil {
		st.Archive = []model.ArchivedTask{}
	}
	return st, nil
}

// Save overwrites every key with the matching part of st.
func (s *LocalStore) Save(ctx context.Context, st model.State) error {
	entries, err := encodeShared(st)
	if err != nil {
		return err
	}
	device, err := encodeDevice(st)
	if err != nil {
		return err
	}
	for _, e := range append(entries, device...) {
		if err := s.Put(ctx, e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

// SaveDevice writes only the keys that never leave the device: settings,
// the last check-in date, shop items and the profile.
func (s *LocalStore) SaveDevice(ctx context.Context, st model.State) error {
	device, err := encodeDevice(st)
	if err != nil {
		return err
	}
	for _, e := range device {
		if err := s.Put(ctx, e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

type kv struct {
	key   string
	value string
}

func encodeShared(st model.State) ([]kv, error) {
	tasks, err := encodeJSON(orEmpty(st.Tasks))
	if err != nil {
		return nil, err
	}
	archive, err := encodeJSON(orEmpty(st.Archive))
	if err != nil {
		return nil, err
	}
	streakHistory, err := encodeJSON(orEmpty(st.Ledger.StreakHistory))
	if err != nil {
		return nil, err
	}
	pointsHistory, err := encodeJSON(orEmpty(st.Ledger.PointsHistory))
	if err != nil {
		return nil, err
	}
	return []kv{
		{KeyTasks, tasks},
		{KeyArchive, archive},
		{KeyStreak, strconv.Itoa(st.Ledger.CurrentStreak)},
		{KeyMaxStreak, strconv.Itoa(st.Ledger.MaxStreak)},
		{KeyTotalPoints, strconv.Itoa(st.Ledger.TotalPoints)},
		{KeyStreakHistory, streakHistory},
		{KeyPointsHistory, pointsHistory},
	}, nil
}

func encodeDevice(st model.State) ([]kv, error) {
	settings, err := encodeJSON(st.Settings)
	if err != nil {
		return nil, err
	}
	shopItems, err := encodeJSON(orEmpty(st.ShopItems))
	if err != nil {
		return nil, err
	}
	profile, err := encodeJSON(st.Profile)
	if err != nil {
		return nil, err
	}
	return []kv{
		{KeyLastCheck, st.LastCheckDate},
		{KeySettings, settings},
		{KeyShopItems, shopItems},
		{KeyProfile, profile},
	}, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("storage: encode: %w", err)
	}
	return string(b), nil
}

func decodeJSON(raw map[string]string, key string, dst any) error {
	v, ok := raw[key]
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		return fmt.Errorf("storage: decode %s: %w", key, err)
	}
	return nil
}

func parseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
