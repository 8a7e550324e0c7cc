package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrMissingTaskID      = errors.New("scheduler: task id is required")
	ErrEngineStopped      = errors.New("scheduler: engine stopped")
)

// ReminderEvent is one due-time reminder. At most one event per TaskID is
// queued; scheduling a task again moves its existing event.
type ReminderEvent struct {
	TaskID    string
	Title     string
	Body      string
	TriggerAt time.Time
}

type queueItem struct {
	event ReminderEvent
	index int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].event.TriggerAt.Before(pq[j].event.TriggerAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*queueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}

type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	byTask  map[string]*queueItem
	out     chan ReminderEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(priorityQueue, 0),
		byTask: make(map[string]*queueItem),
		out:    make(chan ReminderEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// C delivers due reminders. It is closed when the engine stops.
func (e *Engine) C() <-chan ReminderEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.stopped = true
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(ev ReminderEvent) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}
	if ev.TaskID == "" {
		return ErrMissingTaskID
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}

	if item, ok := e.byTask[ev.TaskID]; ok {
		item.event = ev
		heap.Fix(&e.queue, item.index)
	} else {
		item := &queueItem{event: ev}
		heap.Push(&e.queue, item)
		e.byTask[ev.TaskID] = item
	}
	e.signalWakeup()
	return nil
}

// Cancel drops the queued reminder for taskID and reports whether one existed.
func (e *Engine) Cancel(taskID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.byTask[taskID]
	if !ok {
		return false
	}
	heap.Remove(&e.queue, item.index)
	delete(e.byTask, taskID)
	e.signalWakeup()
	return true
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.TriggerAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now())
			for _, ev := range due {
				select {
				case e.out <- ev:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (ReminderEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return ReminderEvent{}, false
	}
	return e.queue[0].event, true
}

func (e *Engine) popDue(now time.Time) []ReminderEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]ReminderEvent, 0)
	for len(e.queue) > 0 {
		next := e.queue[0].event
		if next.TriggerAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(*queueItem)
		delete(e.byTask, item.event.TaskID)
		out = append(out, item.event)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
