package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/streakd/internal/commands"
)

type verb struct {
	name  string
	use   string
	short string
	args  cobra.PositionalArgs
}

// verbs mirror the command palette; their arguments use the same grammar.
var verbs = []verb{
	{"add", "add <text> [d:easy|medium|hard] [at:HH:MM] [every:daily|weekly|monthly[:N]]", "Add a task", cobra.MinimumNArgs(1)},
	{"done", "done <n|id>", "Complete or reopen a task", cobra.ExactArgs(1)},
	{"edit", "edit <n|id> <text>", "Rename a task", cobra.MinimumNArgs(2)},
	{"archive", "archive <n|id>", "Move a task to the archive", cobra.ExactArgs(1)},
	{"restore", "restore <n|id>", "Bring an archived task back", cobra.ExactArgs(1)},
	{"delete", "delete <n|id>", "Delete an archived task forever", cobra.ExactArgs(1)},
	{"buy", "buy <item>", "Buy or equip a shop item", cobra.ExactArgs(1)},
	{"sync", "sync on|off", "Switch remote sync", cobra.ExactArgs(1)},
	{"haptics", "haptics on|off", "Switch haptic feedback", cobra.ExactArgs(1)},
	{"lead", "lead <minutes>", "Set how early due-time reminders fire", cobra.ExactArgs(1)},
}

func verbCommand(v verb) *cobra.Command {
	return &cobra.Command{
		Use:   v.use,
		Short: v.short,
		Args:  v.args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLine(cmd, v.name+" "+strings.Join(args, " "))
		},
	}
}

func runLine(cmd *cobra.Command, line string) error {
	parsed, err := commands.Parse(line)
	if err != nil {
		return err
	}
	rt, err := openRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	res, err := commands.Execute(parsed, commands.AppHandlers(cmd.Context(), rt.app))
	if res.Message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	}
	return err
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print tasks, streak and points",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		st := rt.app.Snapshot()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s level %d | %d pts | streak %d (best %d)\n",
			st.Profile.Icon, st.Level(), st.Ledger.TotalPoints, st.Ledger.CurrentStreak, st.Ledger.MaxStreak)
		for i, t := range st.Tasks {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			line := fmt.Sprintf("%2d [%s] %s (%s, %d pt)", i+1, mark, t.Text, t.Difficulty, t.Points)
			if t.DueTime != "" {
				line += " due " + t.DueTime
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the whole state as JSON to stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		bundle, err := rt.app.Export()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bundle))
		return err
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the whole state with a JSON export (stdin when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		bundle, err := io.ReadAll(in)
		if err != nil {
			return err
		}

		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.app.Import(cmd.Context(), bundle); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "imported")
		return nil
	},
}
