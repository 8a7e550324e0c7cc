package update

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/views"
)

func (m Model) renderTasksView() string {
	items := make([]views.TaskItemData, 0, len(m.State.Tasks))
	for i, t := range m.State.Tasks {
		item := views.TaskItemData{
			Index:      i + 1,
			ID:         t.ID,
			Text:       t.Text,
			Difficulty: string(t.Difficulty),
			Points:     t.Points,
			Completed:  t.Completed,
			DueTime:    t.DueTime,
		}
		if t.IsRecurring {
			item.Recurrence = recurrenceLabel(t)
		}
		items = append(items, item)
	}
	data := views.TasksPanelData{Items: items, Cursor: m.Cursor[ViewTasks]}
	if c := m.Cursor[ViewTasks]; c < len(m.State.Tasks) && m.State.Tasks[c].IsRecurring {
		data.Detail = recurrencePreview(m.State.Tasks[c], time.Now())
	}
	return views.RenderTasksPanel(data)
}

func (m Model) renderArchiveView() string {
	items := make([]views.ArchiveItemData, 0, len(m.State.Archive))
	for i, t := range m.State.Archive {
		items = append(items, views.ArchiveItemData{
			Index:        i + 1,
			Text:         t.Text,
			Points:       t.Points,
			ArchivedDate: t.ArchivedDate,
		})
	}
	return views.RenderArchivePanel(items)
}

func (m Model) renderShopView() string {
	balance := m.State.Ledger.TotalPoints
	items := make([]views.ShopItemData, 0, len(m.State.ShopItems))
	for _, it := range m.State.ShopItems {
		value := it.Value
		if it.Type == model.ShopItemUtility {
			value = "⚙"
		}
		items = append(items, views.ShopItemData{
			ID:         it.ID,
			Name:       it.Name,
			Cost:       it.Cost,
			Value:      value,
			Owned:      it.Owned,
			Affordable: balance >= it.Cost,
		})
	}
	return views.RenderShopPanel(items, balance)
}

func (m Model) renderStatsView() string {
	level := m.State.Level()
	return views.RenderStatsPanel(views.StatsPanelData{
		Icon:          m.State.Profile.Icon,
		Level:         level,
		TotalPoints:   m.State.Ledger.TotalPoints,
		NextLevelAt:   pointsForLevel(level + 1),
		CurrentStreak: m.State.Ledger.CurrentStreak,
		MaxStreak:     m.State.Ledger.MaxStreak,
		LastCheckDate: m.State.LastCheckDate,
		RemoteSync:    m.State.Settings.RemoteSyncEnabled,
		RemoteReady:   m.app.RemoteConfigured(),
		Queued:        m.pendingReminders(),
		Haptics:       m.State.Settings.HapticsEnabled,
		LeadMinutes:   m.State.Settings.NotificationLeadTimeMinutes,
	})
}

func (m Model) renderHistoryMarkdown() string {
	entries := m.app.PointsHistory(m.History.From, m.History.To)
	points := make([]views.HistoryRow, 0, len(entries))
	for _, e := range entries {
		points = append(points, views.HistoryRow{Date: e.Date, Points: e.Points, Reason: e.Reason})
	}
	streaks := make([]views.StreakRow, 0, len(m.State.Ledger.StreakHistory))
	for _, e := range m.State.Ledger.StreakHistory {
		streaks = append(streaks, views.StreakRow{Date: e.Date, Streak: e.Streak})
	}
	return views.RenderMarkdown(views.HistoryMarkdown(points, streaks, m.History.From, m.History.To))
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.commandInput.View())
}

func (m Model) renderNotificationsView() string {
	if len(m.Notifications) == 0 {
		return ""
	}
	n := m.Notifications[len(m.Notifications)-1]
	return views.RenderNotification(n.Level, n.Body)
}

func (m Model) pendingReminders() int {
	if m.scheduler == nil {
		return 0
	}
	return m.scheduler.Pending()
}

func recurrenceLabel(t model.Task) string {
	if t.RecurrenceValue > 1 {
		return fmt.Sprintf("%s/%d", t.RecurrenceType, t.RecurrenceValue)
	}
	return string(t.RecurrenceType)
}

// recurrencePreview lists the next few days the task comes back on.
func recurrencePreview(t model.Task, now time.Time) string {
	rule := model.Recurrence{Type: t.RecurrenceType, Value: t.RecurrenceValue}
	days, err := rule.Preview(now, 3)
	if err != nil {
		return ""
	}
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format("Mon Jan 2"))
	}
	return "next: " + strings.Join(out, ", ")
}

// pointsForLevel is the smallest total that reaches level.
func pointsForLevel(level int) int {
	return int(math.Pow(float64(level), 2)) * 100
}
