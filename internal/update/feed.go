package update

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/tracker"
)

// Feed carries app callbacks into the bubbletea loop. The app may call it
// from the remote subscription goroutine or from inside Update, so neither
// method blocks. Notices queue up in order; state changes collapse into the
// latest one since each carries the full state.
type Feed struct {
	mu      sync.Mutex
	notices []tracker.Notice
	state   *model.State
	wake    chan struct{}
}

func NewFeed() *Feed {
	return &Feed{wake: make(chan struct{}, 1)}
}

func (f *Feed) Notice(n tracker.Notice) {
	f.mu.Lock()
	f.notices = append(f.notices, n)
	f.mu.Unlock()
	f.signal()
}

func (f *Feed) Changed(st model.State) {
	f.mu.Lock()
	f.state = &st
	f.mu.Unlock()
	f.signal()
}

func (f *Feed) signal() {
	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// next pops the oldest notice, else the pending state, else nil.
func (f *Feed) next() tea.Msg {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.notices) > 0 {
		n := f.notices[0]
		f.notices = f.notices[1:]
		return NoticeMsg{Notice: n}
	}
	if f.state != nil {
		st := *f.state
		f.state = nil
		return StateChangedMsg{State: st}
	}
	return nil
}

func (f *Feed) wait() tea.Cmd {
	return func() tea.Msg {
		for {
			if msg := f.next(); msg != nil {
				return msg
			}
			<-f.wake
		}
	}
}

// BellHaptics stands in for device vibration by ringing the terminal bell.
// Success stays silent.
type BellHaptics struct {
	W io.Writer
}

func (h BellHaptics) Trigger(kind tracker.HapticKind) {
	if h.W == nil || kind == tracker.HapticSuccess {
		return
	}
	_, _ = io.WriteString(h.W, "\a")
}
