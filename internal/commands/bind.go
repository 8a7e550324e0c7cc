package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/shop"
	"github.com/sandeepkv93/streakd/internal/tracker"
)

// ResolveTask finds an active task by 1-based list position or id prefix.
func ResolveTask(st model.State, ref string) (string, error) {
	ids := make([]string, len(st.Tasks))
	for i, t := range st.Tasks {
		ids[i] = t.ID
	}
	return resolve(ids, ref, "task")
}

// ResolveArchived is ResolveTask for the archive.
func ResolveArchived(st model.State, ref string) (string, error) {
	ids := make([]string, len(st.Archive))
	for i, t := range st.Archive {
		ids[i] = t.ID
	}
	return resolve(ids, ref, "archived task")
}

func resolve(ids []string, ref, kind string) (string, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(ids) {
		return ids[n-1], nil
	}
	// an out-of-range number may still be an id prefix
	match := ""
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
		if strings.HasPrefix(id, ref) {
			if match != "" {
				return "", &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("ambiguous %s reference: %s", kind, ref)}
			}
			match = id
		}
	}
	if match == "" {
		return "", &model.NotFoundError{Kind: kind, ID: ref}
	}
	return match, nil
}

// AppHandlers binds every command to app.
func AppHandlers(ctx context.Context, app *tracker.App) Handlers {
	return Handlers{
		Add: func(a AddArgs) (Result, error) {
			task, err := app.AddTask(ctx, tracker.AddInput{
				Text:            a.Text,
				Difficulty:      a.Difficulty,
				IsRecurring:     a.IsRecurring,
				RecurrenceType:  a.RecurrenceType,
				RecurrenceValue: a.RecurrenceValue,
				DueTime:         a.DueTime,
			})
			if task.ID == "" {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("added %q (+%d)", task.Text, task.Points)}, err
		},
		Done: func(a TargetArgs) (Result, error) {
			id, err := ResolveTask(app.Snapshot(), a.Target)
			if err != nil {
				return Result{}, err
			}
			task, err := app.ToggleTask(ctx, id)
			if task.ID == "" {
				return Result{}, err
			}
			if task.Completed {
				return Result{Message: fmt.Sprintf("completed %q (+%d)", task.Text, task.Points)}, err
			}
			return Result{Message: fmt.Sprintf("reopened %q (-%d)", task.Text, task.Points)}, err
		},
		Edit: func(a EditArgs) (Result, error) {
			id, err := ResolveTask(app.Snapshot(), a.Target)
			if err != nil {
				return Result{}, err
			}
			task, err := app.EditTask(ctx, id, a.Text)
			if task.ID == "" {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("renamed to %q", task.Text)}, err
		},
		Archive: func(a TargetArgs) (Result, error) {
			id, err := ResolveTask(app.Snapshot(), a.Target)
			if err != nil {
				return Result{}, err
			}
			task, err := app.ArchiveTask(ctx, id)
			if task.ID == "" {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("archived %q", task.Text)}, err
		},
		Restore: func(a TargetArgs) (Result, error) {
			id, err := ResolveArchived(app.Snapshot(), a.Target)
			if err != nil {
				return Result{}, err
			}
			task, err := app.RestoreTask(ctx, id)
			if task.ID == "" {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("restored %q", task.Text)}, err
		},
		Delete: func(a TargetArgs) (Result, error) {
			id, err := ResolveArchived(app.Snapshot(), a.Target)
			if err != nil {
				return Result{}, err
			}
			if err := app.DeleteArchived(ctx, id); err != nil {
				return Result{}, err
			}
			return Result{Message: "deleted from archive"}, nil
		},
		Buy: func(a BuyArgs) (Result, error) {
			receipt, err := app.Purchase(ctx, a.ItemID)
			if receipt.ItemID == "" {
				return Result{}, err
			}
			switch receipt.Outcome {
			case shop.OutcomeReequipped:
				return Result{Message: fmt.Sprintf("equipped %s", receipt.ItemID)}, err
			case shop.OutcomeAlreadyUsed:
				return Result{Message: fmt.Sprintf("%s already used", receipt.ItemID)}, err
			default:
				return Result{Message: fmt.Sprintf("bought %s for %d, %d left", receipt.ItemID, receipt.Spent, receipt.Balance)}, err
			}
		},
		Sync: func(a ToggleArgs) (Result, error) {
			if err := app.SetRemoteSync(ctx, a.Enabled); err != nil {
				return Result{}, err
			}
			if app.Snapshot().Settings.RemoteSyncEnabled {
				return Result{Message: "remote sync on"}, nil
			}
			return Result{Message: "remote sync off"}, nil
		},
		Haptics: func(a ToggleArgs) (Result, error) {
			if err := app.SetHaptics(ctx, a.Enabled); err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("haptics %s", onOff(a.Enabled))}, nil
		},
		Lead: func(a LeadArgs) (Result, error) {
			if err := app.SetLeadTime(ctx, a.Minutes); err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("reminders %d minutes ahead", a.Minutes)}, nil
		},
		Show: func(a ShowArgs) (Result, error) {
			return Result{Message: "showing " + a.Subject, Show: &a}, nil
		},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
