package update

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/scheduler"
	"github.com/sandeepkv93/streakd/internal/tracker"
)

type View string

const (
	ViewTasks   View = "Tasks"
	ViewArchive View = "Archive"
	ViewHistory View = "History"
	ViewShop    View = "Shop"
	ViewStats   View = "Stats"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Tasks   string
	Archive string
	History string
	Shop    string
	Stats   string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type HistoryRange struct {
	From string
	To   string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type Options struct {
	// Tick is how often the daily reset check runs.
	Tick           time.Duration
	DesktopEnabled bool
	Notifier       DesktopNotifier
	Scheduler      *scheduler.Engine
	Feed           *Feed
}

type Model struct {
	CurrentView   View
	Cursor        map[View]int
	History       HistoryRange
	State         model.State
	ReminderLog   []scheduler.ReminderEvent
	Palette       CommandPaletteState
	HelpVisible   bool
	Notifications []Notification
	Status        StatusBar
	Keys          GlobalKeyMap
	Quitting      bool
	LastError     error

	ctx            context.Context
	app            *tracker.App
	scheduler      *scheduler.Engine
	feed           *Feed
	tick           time.Duration
	desktopEnabled bool
	notifier       DesktopNotifier

	commandInput  textinput.Model
	helpModel     help.Model
	historyViewer viewport.Model
}

type DesktopNotifier interface {
	Send(Notification) error
}

type NoopDesktopNotifier struct{}

func (NoopDesktopNotifier) Send(Notification) error { return nil }

type ExecDesktopNotifier struct{}

func (ExecDesktopNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

type SwitchViewMsg struct {
	View View
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

// StateChangedMsg carries a fresh copy of the app state.
type StateChangedMsg struct {
	State model.State
}

type NoticeMsg struct {
	Notice tracker.Notice
}

type EvaluateTickMsg struct{}

type ReminderDueMsg struct {
	Event scheduler.ReminderEvent
}

// NewModel builds the TUI over a started app.
func NewModel(ctx context.Context, app *tracker.App, opts Options) Model {
	m := Model{
		CurrentView: ViewTasks,
		Cursor:      make(map[View]int),
		State:       app.Snapshot(),
		Keys: GlobalKeyMap{
			Tasks:   "1",
			Archive: "2",
			History: "3",
			Shop:    "4",
			Stats:   "5",
			Help:    "?",
			Quit:    "q",
		},
		ctx:            ctx,
		app:            app,
		scheduler:      opts.Scheduler,
		feed:           opts.Feed,
		tick:           opts.Tick,
		desktopEnabled: opts.DesktopEnabled,
		notifier:       NoopDesktopNotifier{},
	}
	if opts.Notifier != nil {
		m.notifier = opts.Notifier
	}
	if m.tick <= 0 {
		m.tick = time.Minute
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.Placeholder = "add stretch d:easy at:07:30"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
	m.historyViewer = viewport.New(56, 16)
}

// syncBubbleData keeps cursors in range and re-renders the history pane.
func (m *Model) syncBubbleData() {
	m.clampCursor(ViewTasks, len(m.State.Tasks))
	m.clampCursor(ViewArchive, len(m.State.Archive))
	m.clampCursor(ViewShop, len(m.State.ShopItems))
	m.historyViewer.SetContent(m.renderHistoryMarkdown())
}

func (m *Model) clampCursor(v View, n int) {
	c := m.Cursor[v]
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	m.Cursor[v] = c
}

func (m *Model) refresh() {
	m.State = m.app.Snapshot()
}

func (m *Model) notify(title, body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	n := Notification{
		Title: title,
		Body:  body,
		Level: level,
		At:    time.Now().UTC(),
	}
	m.Notifications = append(m.Notifications, n)
	if len(m.Notifications) > 40 {
		m.Notifications = m.Notifications[len(m.Notifications)-40:]
	}
	if m.desktopEnabled && m.notifier != nil {
		_ = m.notifier.Send(n)
	}
}

func waitForReminderCmd(ch <-chan scheduler.ReminderEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ReminderDueMsg{Event: ev}
	}
}

func evaluateTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return EvaluateTickMsg{} })
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
