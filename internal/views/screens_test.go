package views

import (
	"strings"
	"testing"
)

func TestHistoryMarkdownNewestFirst(t *testing.T) {
	md := HistoryMarkdown(
		[]HistoryRow{
			{Date: "2026-03-01", Points: 3, Reason: "completed: Read"},
			{Date: "2026-03-02", Points: 10, Reason: "new streak record: 3 days"},
		},
		[]StreakRow{{Date: "2026-02-20", Streak: 4}},
		"2026-03-01", "",
	)

	first := strings.Index(md, "2026-03-02")
	second := strings.Index(md, "2026-03-01 |")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected newest entry first:\n%s", md)
	}
	if !strings.Contains(md, "| 2026-02-20 | 4 |") {
		t.Fatalf("missing streak row:\n%s", md)
	}
	if !strings.Contains(md, "_range: 2026-03-01 to …_") {
		t.Fatalf("missing range line:\n%s", md)
	}
}

func TestHistoryMarkdownEmpty(t *testing.T) {
	md := HistoryMarkdown(nil, nil, "", "")
	if !strings.Contains(md, "No points earned") || !strings.Contains(md, "No broken streaks") {
		t.Fatalf("unexpected empty history:\n%s", md)
	}
}

func TestRenderTasksPanel(t *testing.T) {
	out := RenderTasksPanel(TasksPanelData{Items: []TaskItemData{
		{Index: 1, Text: "Run", Difficulty: "hard", Points: 5, DueTime: "07:30"},
		{Index: 2, Text: "Read", Difficulty: "easy", Points: 1, Recurrence: "daily"},
	}, Cursor: 1})

	if !strings.Contains(out, "Run (hard, 5 pt) due:07:30") {
		t.Fatalf("missing first task:\n%s", out)
	}
	if !strings.Contains(out, ">  2 [ ] Read") {
		t.Fatalf("cursor not on second task:\n%s", out)
	}
	if !strings.Contains(RenderTasksPanel(TasksPanelData{}), "no tasks yet") {
		t.Fatal("expected empty hint")
	}
}
