package prompt

import (
	"sync"
	"time"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseWaiting    Phase = "waiting"
	PhaseOpenManual Phase = "open_manual"
	PhaseOpenAuto   Phase = "open_auto"
	PhaseClosed     Phase = "closed"
)

// Stopper cancels a pending callback.
type Stopper interface {
	Stop() bool
}

// Clock is the time source the timer schedules against.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

// SystemClock is backed by the time package.
func SystemClock() Clock { return systemClock{} }

// State is a snapshot of one prompt.
type State struct {
	ID           string     `json:"id,omitempty"`
	Phase        Phase      `json:"phase"`
	IsOpen       bool       `json:"is_open"`
	HasBeenShown bool       `json:"has_been_shown"`
	DelayMS      int64      `json:"delay_ms"`
	OpenedAt     *time.Time `json:"opened_at,omitempty"`
}

// Timer shows the contact prompt on request or once, automatically, after
// delay. Once shown by either path the automatic trigger never fires again.
type Timer struct {
	mu       sync.Mutex
	clock    Clock
	delay    time.Duration
	phase    Phase
	isOpen   bool
	shown    bool
	openedAt *time.Time
	pending  Stopper
}

func NewTimer(delay time.Duration, clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock()
	}
	return &Timer{clock: clock, delay: delay, phase: PhaseIdle}
}

// Start arms the automatic trigger. It is a no-op once armed or once the
// prompt has been shown.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.shown || t.pending != nil {
		return
	}
	t.phase = PhaseWaiting
	t.pending = t.clock.AfterFunc(t.delay, t.fire)
}

func (t *Timer) fire() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = nil
	if t.shown {
		return
	}
	t.show(PhaseOpenAuto)
}

// Open shows the prompt on user request and cancels any pending auto-open.
func (t *Timer) Open() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.show(PhaseOpenManual)
}

// caller holds t.mu
func (t *Timer) show(phase Phase) {
	now := t.clock.Now()
	t.shown = true
	t.isOpen = true
	t.phase = phase
	t.openedAt = &now
}

// Close hides an open prompt. Closing a hidden prompt changes nothing.
func (t *Timer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isOpen {
		return
	}
	t.isOpen = false
	t.phase = PhaseClosed
}

// Stop cancels a pending auto-open without showing the prompt.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := State{
		Phase:        t.phase,
		IsOpen:       t.isOpen,
		HasBeenShown: t.shown,
		DelayMS:      t.delay.Milliseconds(),
	}
	if t.openedAt != nil {
		at := *t.openedAt
		s.OpenedAt = &at
	}
	return s
}
