package update

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/scheduler"
	"github.com/sandeepkv93/streakd/internal/shop"
	"github.com/sandeepkv93/streakd/internal/storage"
	"github.com/sandeepkv93/streakd/internal/tracker"
)

func newTestModel(t *testing.T, feed *Feed) Model {
	t.Helper()
	local, err := storage.OpenLocal(filepath.Join(t.TempDir(), "streakd.db"))
	if err != nil {
		t.Fatalf("open local: %v", err)
	}
	t.Cleanup(func() { _ = local.Close() })

	catalog, err := shop.DefaultCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	opts := []tracker.Option{
		tracker.WithCatalog(catalog),
		tracker.WithClock(func() time.Time { return time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) }),
	}
	if feed != nil {
		opts = append(opts, tracker.WithNoticeHandler(feed.Notice), tracker.WithChangeHandler(feed.Changed))
	}
	app := tracker.New(storage.NewGateway(local), opts...)
	if err := app.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return NewModel(context.Background(), app, Options{Feed: feed})
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestNewModelDefaults(t *testing.T) {
	m := newTestModel(t, nil)
	if m.CurrentView != ViewTasks {
		t.Fatalf("expected default view %q, got %q", ViewTasks, m.CurrentView)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if len(m.State.ShopItems) == 0 {
		t.Fatal("expected catalog items in state")
	}
}

func TestUpdateKeySwitchesView(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, "2")
	if m.CurrentView != ViewArchive {
		t.Fatalf("expected archive view, got %q", m.CurrentView)
	}
	m = press(t, m, "4")
	if m.CurrentView != ViewShop {
		t.Fatalf("expected shop view, got %q", m.CurrentView)
	}
}

func TestUpdateSwitchViewMsg(t *testing.T) {
	m := newTestModel(t, nil)
	updated, _ := m.Update(SwitchViewMsg{View: ViewHistory})
	next := updated.(Model)
	if next.CurrentView != ViewHistory {
		t.Fatalf("expected history view, got %q", next.CurrentView)
	}

	updated, _ = next.Update(SwitchViewMsg{View: View("Unknown")})
	next = updated.(Model)
	if next.CurrentView != ViewHistory {
		t.Fatalf("expected view unchanged for unknown view, got %q", next.CurrentView)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := newTestModel(t, nil)
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", next.LastError)
	}
	if !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestPaletteAddsAndTogglesTask(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, "/", "add stretch d:hard", "enter")
	if m.Palette.Active {
		t.Fatal("expected palette closed after enter")
	}
	if len(m.State.Tasks) != 1 || m.State.Tasks[0].Text != "stretch" {
		t.Fatalf("expected one added task, got %+v", m.State.Tasks)
	}
	if !strings.Contains(m.Status.Text, "stretch") {
		t.Fatalf("unexpected status: %+v", m.Status)
	}

	m = press(t, m, "space")
	if !m.State.Tasks[0].Completed {
		t.Fatal("expected task completed after space")
	}
	if m.State.Ledger.TotalPoints != 5 {
		t.Fatalf("expected 5 points, got %d", m.State.Ledger.TotalPoints)
	}

	m = press(t, m, "a")
	if len(m.State.Tasks) != 0 || len(m.State.Archive) != 1 {
		t.Fatalf("expected task archived, got tasks=%d archive=%d", len(m.State.Tasks), len(m.State.Archive))
	}

	m = press(t, m, "2", "r")
	if len(m.State.Tasks) != 1 {
		t.Fatalf("expected restored task, got %+v", m.State.Tasks)
	}
}

func TestPaletteErrorAndEscape(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, "/", "fly", "enter")
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("expected unknown command error, got %+v", m.Status)
	}

	m = press(t, m, "/", "add x", "esc")
	if m.Palette.Active || len(m.State.Tasks) != 0 {
		t.Fatalf("expected escape to discard input, palette=%v tasks=%d", m.Palette.Active, len(m.State.Tasks))
	}
}

func TestShowHistoryRange(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, "/", "show history from:2026-03-01 to:2026-03-31", "enter")
	if m.CurrentView != ViewHistory {
		t.Fatalf("expected history view, got %q", m.CurrentView)
	}
	if m.History.From != "2026-03-01" || m.History.To != "2026-03-31" {
		t.Fatalf("unexpected range: %+v", m.History)
	}
}

func TestShopPurchaseRejectedWithoutPoints(t *testing.T) {
	m := newTestModel(t, nil)
	m = press(t, m, "4", "enter")
	if !m.Status.IsError || !errors.Is(m.LastError, model.ErrInsufficientPoints) {
		t.Fatalf("expected insufficient points, got %+v / %v", m.Status, m.LastError)
	}
}

func TestReminderDueMsgLogs(t *testing.T) {
	m := newTestModel(t, nil)
	ev := scheduler.ReminderEvent{TaskID: "t1", Title: "Task due soon", Body: "stretch", TriggerAt: time.Now()}
	updated, _ := m.Update(ReminderDueMsg{Event: ev})
	next := updated.(Model)
	if len(next.ReminderLog) != 1 || next.ReminderLog[0].TaskID != "t1" {
		t.Fatalf("unexpected reminder log: %+v", next.ReminderLog)
	}
	if len(next.Notifications) != 1 || next.Notifications[0].Body != "stretch" {
		t.Fatalf("unexpected notifications: %+v", next.Notifications)
	}
}

func drainFeed(feed *Feed) []tea.Msg {
	var msgs []tea.Msg
	for msg := feed.next(); msg != nil; msg = feed.next() {
		msgs = append(msgs, msg)
	}
	return msgs
}

func TestFeedDeliversAppChanges(t *testing.T) {
	feed := NewFeed()
	m := newTestModel(t, feed)
	drainFeed(feed)

	if _, err := m.app.AddTask(context.Background(), tracker.AddInput{Text: "read"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	msgs := drainFeed(feed)
	if len(msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(msgs))
	}
	updated, cmd := m.Update(msgs[0])
	next := updated.(Model)
	if len(next.State.Tasks) != 1 {
		t.Fatalf("expected state from feed, got %+v", next.State.Tasks)
	}
	if cmd == nil {
		t.Fatal("expected model to keep waiting on the feed")
	}

	updated, _ = next.Update(NoticeMsg{Notice: tracker.Notice{Kind: tracker.NoticeLevelUp, Message: "level up: you reached level 1"}})
	next = updated.(Model)
	if next.Status.IsError || !strings.Contains(next.Status.Text, "level 1") {
		t.Fatalf("unexpected status: %+v", next.Status)
	}
}

func TestFeedKeepsEveryNoticeAndLatestState(t *testing.T) {
	feed := NewFeed()
	for i := 0; i < 200; i++ {
		feed.Changed(model.State{LastCheckDate: fmt.Sprintf("day-%d", i)})
		feed.Notice(tracker.Notice{Kind: tracker.NoticeRemoteError, Message: fmt.Sprintf("n%d", i)})
	}

	msg := feed.wait()()
	first, ok := msg.(NoticeMsg)
	if !ok || first.Notice.Message != "n0" {
		t.Fatalf("expected oldest notice first, got %#v", msg)
	}
	rest := drainFeed(feed)
	if len(rest) != 200 {
		t.Fatalf("expected 199 notices and one state, got %d messages", len(rest))
	}
	last, ok := rest[len(rest)-1].(StateChangedMsg)
	if !ok || last.State.LastCheckDate != "day-199" {
		t.Fatalf("expected latest state last, got %#v", rest[len(rest)-1])
	}
	for i, msg := range rest[:199] {
		n, ok := msg.(NoticeMsg)
		if !ok || n.Notice.Message != fmt.Sprintf("n%d", i+1) {
			t.Fatalf("notice %d out of order: %#v", i+1, msg)
		}
	}
}

func TestBellHaptics(t *testing.T) {
	var buf bytes.Buffer
	h := BellHaptics{W: &buf}
	h.Trigger(tracker.HapticSuccess)
	h.Trigger(tracker.HapticWarning)
	if buf.String() != "\a" {
		t.Fatalf("expected a single bell, got %q", buf.String())
	}
}

func TestViewRendersHeader(t *testing.T) {
	m := newTestModel(t, nil)
	out := m.View()
	if !strings.Contains(out, "streakd") || !strings.Contains(out, "view: Tasks") {
		t.Fatalf("unexpected view:\n%s", out)
	}
}

func TestRecurrencePreview(t *testing.T) {
	task := model.Task{IsRecurring: true, RecurrenceType: model.RecurrenceWeekly, RecurrenceValue: 1}
	got := recurrencePreview(task, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	if got != "next: Mon Mar 9, Mon Mar 16, Mon Mar 23" {
		t.Fatalf("unexpected preview %q", got)
	}
	if recurrencePreview(model.Task{IsRecurring: true}, time.Now()) != "" {
		t.Fatal("expected no preview for an invalid rule")
	}
}
