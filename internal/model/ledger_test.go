package model

import "testing"

func TestLevelForPoints(t *testing.T) {
	cases := []struct {
		points int
		want   int
	}{
		{0, 0},
		{-40, 0},
		{99, 0},
		{100, 1},
		{399, 1},
		{400, 2},
		{900, 3},
	}
	for _, tc := range cases {
		if got := LevelForPoints(tc.points); got != tc.want {
			t.Fatalf("LevelForPoints(%d) = %d, want %d", tc.points, got, tc.want)
		}
	}
}

func TestLedgerEarnAppendsHistory(t *testing.T) {
	var l Ledger
	l.Earn(5, "2026-02-09", "completed: write tests")
	l.Earn(3, "2026-02-10", "completed: review")
	if l.TotalPoints != 8 || len(l.PointsHistory) != 2 {
		t.Fatalf("unexpected ledger: %+v", l)
	}
	if l.Level() != 0 {
		t.Fatalf("expected level 0, got %d", l.Level())
	}
}

func TestLedgerCloneIsIndependent(t *testing.T) {
	l := Ledger{StreakHistory: []StreakEntry{{Date: "2026-02-01", Streak: 2}}}
	c := l.Clone()
	c.StreakHistory[0].Streak = 9
	if l.StreakHistory[0].Streak != 2 {
		t.Fatal("clone shares history backing array")
	}
}

func TestFilterPointsHistory(t *testing.T) {
	entries := []PointsEntry{
		{Date: "2026-02-01", Points: 1},
		{Date: "2026-02-05", Points: 3},
		{Date: "2026-02-09", Points: 5},
	}
	got := FilterPointsHistory(entries, "2026-02-02", "2026-02-09")
	if len(got) != 2 || got[0].Points != 3 || got[1].Points != 5 {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if all := FilterPointsHistory(entries, "", ""); len(all) != 3 {
		t.Fatalf("expected open bounds to keep everything, got %d", len(all))
	}
}
