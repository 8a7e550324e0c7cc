package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/streakd/internal/model"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeDone    Type = "done"
	TypeEdit    Type = "edit"
	TypeArchive Type = "archive"
	TypeRestore Type = "restore"
	TypeDelete  Type = "delete"
	TypeBuy     Type = "buy"
	TypeSync    Type = "sync"
	TypeLead    Type = "lead"
	TypeHaptics Type = "haptics"
	TypeShow    Type = "show"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// AddArgs holds "add <text> [d:easy|medium|hard] [at:HH:MM] [every:daily[:N]]".
type AddArgs struct {
	Text            string
	Difficulty      model.Difficulty
	DueTime         string
	IsRecurring     bool
	RecurrenceType  model.RecurrenceType
	RecurrenceValue int
}

// TargetArgs names a task by list position (1-based) or id prefix.
type TargetArgs struct {
	Target string
}

type EditArgs struct {
	Target string
	Text   string
}

type BuyArgs struct {
	ItemID string
}

type ToggleArgs struct {
	Enabled bool
}

type LeadArgs struct {
	Minutes int
}

type ShowArgs struct {
	Subject string
	From    string
	To      string
}

var showSubjects = map[string]bool{"tasks": true, "archive": true, "history": true, "shop": true, "stats": true}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Target *TargetArgs
	Edit   *EditArgs
	Buy    *BuyArgs
	Toggle *ToggleArgs
	Lead   *LeadArgs
	Show   *ShowArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeDone, TypeArchive, TypeRestore, TypeDelete:
		return parseTarget(input, Type(head), args)
	case TypeEdit:
		return parseEdit(input, args)
	case TypeBuy:
		if len(args) != 1 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "buy requires one item id"}
		}
		return Command{Type: TypeBuy, Raw: input, Buy: &BuyArgs{ItemID: strings.ToLower(args[0])}}, nil
	case TypeSync, TypeHaptics:
		return parseToggle(input, Type(head), args)
	case TypeLead:
		return parseLead(input, args)
	case TypeShow:
		return parseShow(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	out := AddArgs{Difficulty: model.DifficultyMedium}
	words := make([]string, 0, len(args))
	for _, arg := range args {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "d:"):
			d, err := model.ParseDifficulty(strings.TrimPrefix(lower, "d:"))
			if err != nil {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
			}
			out.Difficulty = d
		case strings.HasPrefix(lower, "at:"):
			due := strings.TrimPrefix(lower, "at:")
			if _, _, err := model.ParseDueTime(due); err != nil {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
			}
			out.DueTime = due
		case strings.HasPrefix(lower, "every:"):
			rt, n, err := parseEvery(strings.TrimPrefix(lower, "every:"))
			if err != nil {
				return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
			}
			out.IsRecurring = true
			out.RecurrenceType = rt
			out.RecurrenceValue = n
		default:
			words = append(words, arg)
		}
	}
	out.Text = strings.TrimSpace(strings.Join(words, " "))
	if out.Text == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires task text"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &out}, nil
}

func parseEvery(spec string) (model.RecurrenceType, int, error) {
	kind, count, hasCount := strings.Cut(spec, ":")
	rt, err := model.ParseRecurrenceType(kind)
	if err != nil {
		return "", 0, err
	}
	n := 1
	if hasCount {
		n, err = strconv.Atoi(count)
		if err != nil || n <= 0 {
			return "", 0, fmt.Errorf("%w: %q", model.ErrInvalidInterval, count)
		}
	}
	return rt, n, nil
}

func parseTarget(raw string, t Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires one task reference", t)}
	}
	return Command{Type: t, Raw: raw, Target: &TargetArgs{Target: args[0]}}, nil
}

func parseEdit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires a task reference and new text"}
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &EditArgs{Target: args[0], Text: strings.Join(args[1:], " ")}}, nil
}

func parseToggle(raw string, t Type, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires on or off", t)}
	}
	switch strings.ToLower(args[0]) {
	case "on", "true", "1":
		return Command{Type: t, Raw: raw, Toggle: &ToggleArgs{Enabled: true}}, nil
	case "off", "false", "0":
		return Command{Type: t, Raw: raw, Toggle: &ToggleArgs{Enabled: false}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires on or off", t)}
	}
}

func parseLead(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "lead requires minutes"}
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.ToLower(args[0]), "m"))
	if err != nil || n <= 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "lead requires a positive number of minutes"}
	}
	return Command{Type: TypeLead, Raw: raw, Lead: &LeadArgs{Minutes: n}}, nil
}

func parseShow(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "show requires a subject"}
	}
	subject := strings.ToLower(args[0])
	if !showSubjects[subject] {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown subject: %s", subject)}
	}
	out := ShowArgs{Subject: subject}
	for _, arg := range args[1:] {
		lower := strings.ToLower(arg)
		switch {
		case strings.HasPrefix(lower, "from:"):
			out.From = strings.TrimPrefix(lower, "from:")
		case strings.HasPrefix(lower, "to:"):
			out.To = strings.TrimPrefix(lower, "to:")
		}
	}
	return Command{Type: TypeShow, Raw: raw, Show: &out}, nil
}
