package scheduler

import (
	"time"

	"go.uber.org/zap"
)

// Notifier turns per-task reminder requests into engine events.
type Notifier struct {
	engine *Engine
	logger *zap.Logger
}

func NewNotifier(engine *Engine, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{engine: engine, logger: logger}
}

func (n *Notifier) Schedule(taskID, title, body string, fireAt time.Time) error {
	err := n.engine.Schedule(ReminderEvent{TaskID: taskID, Title: title, Body: body, TriggerAt: fireAt})
	if err != nil {
		return err
	}
	n.logger.Debug("reminder scheduled", zap.String("task_id", taskID), zap.Time("fire_at", fireAt))
	return nil
}

func (n *Notifier) Cancel(taskID string) {
	if n.engine.Cancel(taskID) {
		n.logger.Debug("reminder cancelled", zap.String("task_id", taskID))
	}
}
