package update

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/shop"
	"github.com/sandeepkv93/streakd/internal/storage"
	"github.com/sandeepkv93/streakd/internal/tracker"
	"github.com/sandeepkv93/streakd/internal/views"
)

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{evaluateTickCmd(m.tick)}
	if m.scheduler != nil {
		cmds = append(cmds, waitForReminderCmd(m.scheduler.C()))
	}
	if m.feed != nil {
		cmds = append(cmds, m.feed.wait())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == "ctrl+c" {
				m.Quitting = true
				return m, tea.Quit
			}
			return m.handlePaletteKey(typed), nil
		}

		switch typed.String() {
		case "/":
			return m.openPalette(""), nil
		case m.Keys.Tasks:
			m.CurrentView = ViewTasks
			return m, nil
		case m.Keys.Archive:
			m.CurrentView = ViewArchive
			return m, nil
		case m.Keys.History:
			m.CurrentView = ViewHistory
			return m, nil
		case m.Keys.Shop:
			m.CurrentView = ViewShop
			return m, nil
		case m.Keys.Stats:
			m.CurrentView = ViewStats
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown"}
			} else {
				m.Status = StatusBar{Text: "help hidden"}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.CurrentView {
		case ViewTasks:
			return m.handleTasksKey(typed), nil
		case ViewArchive:
			return m.handleArchiveKey(typed), nil
		case ViewShop:
			return m.handleShopKey(typed), nil
		case ViewHistory:
			var cmd tea.Cmd
			m.historyViewer, cmd = m.historyViewer.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify("Status", typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			m.notify("Error", typed.Err.Error(), "error")
		}
		return m, nil
	case StateChangedMsg:
		m.State = typed.State
		return m, m.waitFeed()
	case NoticeMsg:
		level := "info"
		if typed.Notice.Kind == tracker.NoticeRemoteError || typed.Notice.Kind == tracker.NoticeRemoteFallback || typed.Notice.Kind == tracker.NoticeStreakBroken {
			level = "warning"
		}
		m.Status = StatusBar{Text: typed.Notice.Message, IsError: level != "info"}
		m.notify(noticeTitle(typed.Notice.Kind), typed.Notice.Message, level)
		return m, m.waitFeed()
	case EvaluateTickMsg:
		if err := m.app.Evaluate(m.ctx); err != nil {
			m.LastError = err
			m.Status = StatusBar{Text: err.Error(), IsError: true}
		}
		m.refresh()
		return m, evaluateTickCmd(m.tick)
	case ReminderDueMsg:
		m.ReminderLog = append(m.ReminderLog, typed.Event)
		if len(m.ReminderLog) > 20 {
			m.ReminderLog = m.ReminderLog[len(m.ReminderLog)-20:]
		}
		m.Status = StatusBar{Text: fmt.Sprintf("%s: %s", typed.Event.Title, typed.Event.Body)}
		m.notify(typed.Event.Title, typed.Event.Body, "info")
		if m.scheduler != nil {
			return m, waitForReminderCmd(m.scheduler.C())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) waitFeed() tea.Cmd {
	if m.feed == nil {
		return nil
	}
	return m.feed.wait()
}

func (m Model) handleTasksKey(msg tea.KeyMsg) Model {
	tasks := m.State.Tasks
	cursor := m.Cursor[ViewTasks]
	switch msg.String() {
	case "j", "down":
		if cursor < len(tasks)-1 {
			m.Cursor[ViewTasks] = cursor + 1
		}
	case "k", "up":
		if cursor > 0 {
			m.Cursor[ViewTasks] = cursor - 1
		}
	case "n":
		return m.openPalette("add ")
	case "e":
		if len(tasks) > 0 {
			return m.openPalette(fmt.Sprintf("edit %d ", cursor+1))
		}
	case " ", "enter":
		if len(tasks) == 0 {
			return m
		}
		task, err := m.app.ToggleTask(m.ctx, tasks[cursor].ID)
		m.refresh()
		if task.ID == "" {
			return m.fail(err)
		}
		text := fmt.Sprintf("reopened %q (-%d)", task.Text, task.Points)
		if task.Completed {
			text = fmt.Sprintf("completed %q (+%d)", task.Text, task.Points)
		}
		return m.done(text, err)
	case "a":
		if len(tasks) == 0 {
			return m
		}
		archived, err := m.app.ArchiveTask(m.ctx, tasks[cursor].ID)
		m.refresh()
		if archived.ID == "" {
			return m.fail(err)
		}
		return m.done(fmt.Sprintf("archived %q", archived.Text), err)
	}
	return m
}

func (m Model) handleArchiveKey(msg tea.KeyMsg) Model {
	archive := m.State.Archive
	cursor := m.Cursor[ViewArchive]
	switch msg.String() {
	case "j", "down":
		if cursor < len(archive)-1 {
			m.Cursor[ViewArchive] = cursor + 1
		}
	case "k", "up":
		if cursor > 0 {
			m.Cursor[ViewArchive] = cursor - 1
		}
	case "r":
		if len(archive) == 0 {
			return m
		}
		task, err := m.app.RestoreTask(m.ctx, archive[cursor].ID)
		m.refresh()
		if task.ID == "" {
			return m.fail(err)
		}
		return m.done(fmt.Sprintf("restored %q", task.Text), err)
	case "x":
		if len(archive) == 0 {
			return m
		}
		err := m.app.DeleteArchived(m.ctx, archive[cursor].ID)
		m.refresh()
		if err != nil && !isRemoteErr(err) {
			return m.fail(err)
		}
		return m.done("deleted from archive", err)
	}
	return m
}

func (m Model) handleShopKey(msg tea.KeyMsg) Model {
	items := m.State.ShopItems
	cursor := m.Cursor[ViewShop]
	switch msg.String() {
	case "j", "down":
		if cursor < len(items)-1 {
			m.Cursor[ViewShop] = cursor + 1
		}
	case "k", "up":
		if cursor > 0 {
			m.Cursor[ViewShop] = cursor - 1
		}
	case "enter", "b":
		if len(items) == 0 {
			return m
		}
		receipt, err := m.app.Purchase(m.ctx, items[cursor].ID)
		m.refresh()
		if receipt.ItemID == "" {
			return m.fail(err)
		}
		switch receipt.Outcome {
		case shop.OutcomeReequipped:
			return m.done(fmt.Sprintf("equipped %s", receipt.ItemID), err)
		case shop.OutcomeAlreadyUsed:
			return m.done(fmt.Sprintf("%s already used", receipt.ItemID), err)
		default:
			return m.done(fmt.Sprintf("bought %s for %d", receipt.ItemID, receipt.Spent), err)
		}
	}
	return m
}

// done reports a successful action. A remote write error is shown, but the
// change already happened locally.
func (m Model) done(text string, err error) Model {
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: text + " (sync failed)", IsError: true}
		return m
	}
	m.Status = StatusBar{Text: text}
	return m
}

func (m Model) fail(err error) Model {
	if err == nil {
		return m
	}
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	return m
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}
	leftPane := ""
	switch m.CurrentView {
	case ViewTasks:
		leftPane = m.renderTasksView()
	case ViewArchive:
		leftPane = m.renderArchiveView()
	case ViewHistory:
		leftPane = m.historyViewer.View()
	case ViewShop:
		leftPane = m.renderShopView()
	case ViewStats:
		leftPane = m.renderStatsView()
	}
	rightPane := strings.TrimSpace(strings.Join([]string{
		m.renderStatsView(),
		m.renderCommandPalette(),
		m.renderHelpIfVisible(),
	}, "\n\n"))

	notificationView := ""
	if len(m.ReminderLog) > 0 {
		last := m.ReminderLog[len(m.ReminderLog)-1]
		notificationView = fmt.Sprintf("last-reminder: %s @ %s", last.Title, last.TriggerAt.Local().Format("15:04"))
	}
	notificationView = strings.TrimSpace(strings.Join([]string{
		notificationView,
		strings.TrimSpace(m.renderNotificationsView()),
	}, "\n"))

	return views.RenderApp(views.AppData{
		Header: fmt.Sprintf("streakd %s | view: %s | streak %d | %d pts | level %d",
			m.State.Profile.Icon, m.CurrentView, m.State.Ledger.CurrentStreak, m.State.Ledger.TotalPoints, m.State.Level()),
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: notificationView,
		Footer: fmt.Sprintf("keys: %s tasks | %s archive | %s history | %s shop | %s stats | / cmd | %s help | %s quit",
			m.Keys.Tasks, m.Keys.Archive, m.Keys.History, m.Keys.Shop, m.Keys.Stats, m.Keys.Help, m.Keys.Quit),
	})
}

func isKnownView(v View) bool {
	switch v {
	case ViewTasks, ViewArchive, ViewHistory, ViewShop, ViewStats:
		return true
	default:
		return false
	}
}

func noticeTitle(kind tracker.NoticeKind) string {
	switch kind {
	case tracker.NoticeStreakBroken:
		return "Streak broken"
	case tracker.NoticeNewRecord:
		return "New record"
	case tracker.NoticeLevelUp:
		return "Level up"
	case tracker.NoticeRemoteFallback:
		return "Remote sync off"
	case tracker.NoticeRemoteError:
		return "Sync failed"
	default:
		return "Notice"
	}
}

func isRemoteErr(err error) bool {
	var rerr *storage.RemoteIOError
	return errors.As(err, &rerr)
}
