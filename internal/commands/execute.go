package commands

import "fmt"

type Result struct {
	Message string
	// Show is set when the command asks for a view change.
	Show *ShowArgs
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Done    func(TargetArgs) (Result, error)
	Edit    func(EditArgs) (Result, error)
	Archive func(TargetArgs) (Result, error)
	Restore func(TargetArgs) (Result, error)
	Delete  func(TargetArgs) (Result, error)
	Buy     func(BuyArgs) (Result, error)
	Sync    func(ToggleArgs) (Result, error)
	Haptics func(ToggleArgs) (Result, error)
	Lead    func(LeadArgs) (Result, error)
	Show    func(ShowArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		return call(handlers.Add, cmd.Add, cmd.Type)
	case TypeDone:
		return call(handlers.Done, cmd.Target, cmd.Type)
	case TypeEdit:
		return call(handlers.Edit, cmd.Edit, cmd.Type)
	case TypeArchive:
		return call(handlers.Archive, cmd.Target, cmd.Type)
	case TypeRestore:
		return call(handlers.Restore, cmd.Target, cmd.Type)
	case TypeDelete:
		return call(handlers.Delete, cmd.Target, cmd.Type)
	case TypeBuy:
		return call(handlers.Buy, cmd.Buy, cmd.Type)
	case TypeSync:
		return call(handlers.Sync, cmd.Toggle, cmd.Type)
	case TypeHaptics:
		return call(handlers.Haptics, cmd.Toggle, cmd.Type)
	case TypeLead:
		return call(handlers.Lead, cmd.Lead, cmd.Type)
	case TypeShow:
		return call(handlers.Show, cmd.Show, cmd.Type)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func call[T any](fn func(T) (Result, error), args *T, t Type) (Result, error) {
	if fn == nil {
		return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
	}
	if args == nil {
		return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s is missing arguments", t)}
	}
	return fn(*args)
}
