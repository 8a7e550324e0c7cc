package views

import (
	"fmt"
	"strings"
)

type TaskItemData struct {
	Index      int
	ID         string
	Text       string
	Difficulty string
	Points     int
	Completed  bool
	DueTime    string
	Recurrence string
}

type TasksPanelData struct {
	Items  []TaskItemData
	Cursor int
	// Detail is shown under the list for the selected task.
	Detail string
}

type ArchiveItemData struct {
	Index        int
	Text         string
	Points       int
	ArchivedDate string
}

type StatsPanelData struct {
	Icon          string
	Level         int
	TotalPoints   int
	NextLevelAt   int
	CurrentStreak int
	MaxStreak     int
	LastCheckDate string
	RemoteSync    bool
	RemoteReady   bool
	Haptics       bool
	LeadMinutes   int
	Queued        int
}

type ShopItemData struct {
	ID         string
	Name       string
	Cost       int
	Value      string
	Owned      bool
	Affordable bool
}

type HistoryRow struct {
	Date   string
	Points int
	Reason string
}

type StreakRow struct {
	Date   string
	Streak int
}

type HelpPanelData struct {
	Bindings []string
	Commands []string
}

func RenderTasksPanel(data TasksPanelData) string {
	var b strings.Builder
	b.WriteString("tasks:\n")
	b.WriteString("actions: [j/k]move [space]toggle [a]archive [/]command\n")
	if len(data.Items) == 0 {
		b.WriteString("\n(no tasks yet, try /add stretch d:easy)")
		return b.String()
	}
	b.WriteString("\n")
	for i, item := range data.Items {
		cursor := " "
		if i == data.Cursor {
			cursor = ">"
		}
		check := "[ ]"
		text := item.Text
		if item.Completed {
			check = "[x]"
			text = doneStyle.Render(text)
		}
		b.WriteString(fmt.Sprintf("%s %2d %s %s (%s, %d pt)", cursor, item.Index, check, text, item.Difficulty, item.Points))
		if item.DueTime != "" {
			b.WriteString(" due:" + item.DueTime)
		}
		if item.Recurrence != "" {
			b.WriteString(" ↻" + item.Recurrence)
		}
		b.WriteString("\n")
	}
	if data.Detail != "" {
		b.WriteString("\n" + footerStyle.Render(data.Detail) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderArchivePanel(items []ArchiveItemData) string {
	var b strings.Builder
	b.WriteString("archive:\n")
	b.WriteString("actions: /restore N  /delete N\n\n")
	if len(items) == 0 {
		b.WriteString("(archive empty)")
		return b.String()
	}
	for _, item := range items {
		b.WriteString(fmt.Sprintf("%2d %s (%d pt) archived %s\n", item.Index, item.Text, item.Points, item.ArchivedDate))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s level %d\n", data.Icon, data.Level))
	b.WriteString(fmt.Sprintf("points: %d (next level at %d)\n", data.TotalPoints, data.NextLevelAt))
	b.WriteString(fmt.Sprintf("streak: %d days (best %d)\n", data.CurrentStreak, data.MaxStreak))
	if data.LastCheckDate != "" {
		b.WriteString(fmt.Sprintf("last check-in: %s\n", data.LastCheckDate))
	}
	sync := "local"
	switch {
	case data.RemoteSync:
		sync = "remote"
	case !data.RemoteReady:
		sync = "local (no remote configured)"
	}
	b.WriteString(fmt.Sprintf("storage: %s | haptics: %v\n", sync, data.Haptics))
	b.WriteString(fmt.Sprintf("reminders: %dm ahead, %d queued", data.LeadMinutes, data.Queued))
	return b.String()
}

func RenderShopPanel(items []ShopItemData, balance int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("shop (balance %d):\n\n", balance))
	for _, item := range items {
		line := fmt.Sprintf("%s %-12s %-16s %4d", item.Value, item.ID, item.Name, item.Cost)
		switch {
		case item.Owned:
			line = ownedStyle.Render(line + "  owned")
		case !item.Affordable:
			line = footerStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\nactions: /buy <id>")
	return b.String()
}

// HistoryMarkdown lays points and streak history out as markdown tables,
// newest first.
func HistoryMarkdown(points []HistoryRow, streaks []StreakRow, from, to string) string {
	var b strings.Builder
	b.WriteString("# History\n\n")
	if from != "" || to != "" {
		b.WriteString(fmt.Sprintf("_range: %s to %s_\n\n", orDash(from), orDash(to)))
	}
	b.WriteString("## Points\n\n")
	if len(points) == 0 {
		b.WriteString("No points earned in this range.\n\n")
	} else {
		b.WriteString("| date | points | reason |\n|---|---:|---|\n")
		for i := len(points) - 1; i >= 0; i-- {
			p := points[i]
			b.WriteString(fmt.Sprintf("| %s | %+d | %s |\n", p.Date, p.Points, escapeCell(p.Reason)))
		}
		b.WriteString("\n")
	}
	b.WriteString("## Past streaks\n\n")
	if len(streaks) == 0 {
		b.WriteString("No broken streaks yet.\n")
	} else {
		b.WriteString("| ended | days |\n|---|---:|\n")
		for i := len(streaks) - 1; i >= 0; i-- {
			b.WriteString(fmt.Sprintf("| %s | %d |\n", streaks[i].Date, streaks[i].Streak))
		}
	}
	return b.String()
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command:\n" + inputView
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("notification: [%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nkeys:\n%s\n\ncommands:\n%s",
		strings.Join(data.Bindings, "\n"),
		strings.Join(data.Commands, "\n"),
	)
}

func orDash(s string) string {
	if s == "" {
		return "…"
	}
	return s
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
