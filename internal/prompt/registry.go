package prompt

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("prompt session not found")

type session struct {
	timer    *Timer
	lastSeen time.Time
}

// Registry holds one prompt timer per visitor session.
type Registry struct {
	mu       sync.Mutex
	clock    Clock
	delay    time.Duration
	sessions map[string]*session
}

func NewRegistry(delay time.Duration, clock Clock) *Registry {
	if clock == nil {
		clock = SystemClock()
	}
	return &Registry{clock: clock, delay: delay, sessions: make(map[string]*session)}
}

// Create starts a new session with its auto-open timer armed.
func (r *Registry) Create() State {
	id := uuid.NewString()
	t := NewTimer(r.delay, r.clock)
	t.Start()

	r.mu.Lock()
	r.sessions[id] = &session{timer: t, lastSeen: r.clock.Now()}
	r.mu.Unlock()

	s := t.State()
	s.ID = id
	return s
}

func (r *Registry) Get(id string) (State, error) {
	return r.with(id, func(*Timer) {})
}

func (r *Registry) Open(id string) (State, error) {
	return r.with(id, (*Timer).Open)
}

func (r *Registry) Close(id string) (State, error) {
	return r.with(id, (*Timer).Close)
}

func (r *Registry) with(id string, fn func(*Timer)) (State, error) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		sess.lastSeen = r.clock.Now()
	}
	r.mu.Unlock()
	if !ok {
		return State{}, ErrSessionNotFound
	}

	fn(sess.timer)
	s := sess.timer.State()
	s.ID = id
	return s, nil
}

// Sweep drops sessions not touched within maxIdle and returns how many were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.clock.Now().Add(-maxIdle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, sess := range r.sessions {
		if sess.lastSeen.Before(cutoff) {
			sess.timer.Stop()
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
