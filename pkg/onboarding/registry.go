package onboarding

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// DefaultIdleTTL is how long an untouched session is kept.
	DefaultIdleTTL = 30 * time.Minute
	// DefaultFinishedTTL is how long a completed session stays readable.
	DefaultFinishedTTL = 5 * time.Minute
)

// ErrSessionNotFound is returned when no session is registered under an id.
var ErrSessionNotFound = errors.New("onboarding session not found")

// RegistryOption customizes a registry at construction.
type RegistryOption func(*Registry)

// WithIdleTTL closes sessions nobody has looked up for ttl. Non-positive values are ignored.
func WithIdleTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.idleTTL = ttl
		}
	}
}

// WithFinishedTTL closes completed sessions once they have been untouched for ttl.
// Non-positive values are ignored.
func WithFinishedTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.finishedTTL = ttl
		}
	}
}

// WithSweepInterval sets how often expired sessions are reaped. It defaults to half the shorter TTL.
func WithSweepInterval(every time.Duration) RegistryOption {
	return func(r *Registry) {
		if every > 0 {
			r.sweepEvery = every
		}
	}
}

type entry struct {
	session *Session
	touched time.Time
}

// Registry keeps the live sessions so the HTTP layer can address them by id.
// Sessions that sit idle, or linger after finishing, are closed by a background reaper.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	closed   bool
	cfg      SessionConfig
	newID    func() string
	now      func() time.Time

	idleTTL     time.Duration
	finishedTTL time.Duration
	sweepEvery  time.Duration

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewRegistry prepares a registry whose sessions share cfg and starts its reaper.
func NewRegistry(cfg SessionConfig, opts ...RegistryOption) *Registry {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	r := &Registry{
		sessions:    make(map[string]*entry),
		cfg:         cfg,
		newID:       uuid.NewString,
		now:         time.Now,
		idleTTL:     DefaultIdleTTL,
		finishedTTL: DefaultFinishedTTL,
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sweepEvery == 0 {
		r.sweepEvery = max(min(r.idleTTL, r.finishedTTL)/2, time.Millisecond)
	}
	go r.reap()
	return r
}

// Create starts a new session at the first step.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	id := r.newID()
	session, err := NewSession(id, r.cfg)
	if err != nil {
		return nil, err
	}
	r.sessions[id] = &entry{session: session, touched: r.now()}
	r.cfg.Logger.Debug("onboarding session created", zap.String("session", id))
	return session, nil
}

// Get looks a session up by id and marks it as recently used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.touched = r.now()
	return e.session, nil
}

// Remove disposes the session, cancelling a pending signature.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.session.Close()
	r.cfg.Logger.Debug("onboarding session removed", zap.String("session", id))
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops the reaper, disposes every session and refuses new ones.
func (r *Registry) Close() {
	r.closeOnce.Do(func() { close(r.quit) })
	<-r.done

	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*entry)
	r.closed = true
	r.mu.Unlock()
	for _, e := range sessions {
		e.session.Close()
	}
}

func (r *Registry) reap() {
	defer close(r.done)
	ticker := time.NewTicker(r.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.sweep(r.now()); n > 0 {
				r.cfg.Logger.Debug("expired onboarding sessions closed", zap.Int("count", n))
			}
		case <-r.quit:
			return
		}
	}
}

// sweep closes the sessions that expired as of now and returns how many it closed.
func (r *Registry) sweep(now time.Time) int {
	var expired []*Session

	r.mu.Lock()
	for id, e := range r.sessions {
		idle := now.Sub(e.touched)
		if idle >= r.idleTTL || (e.session.Finished() && idle >= r.finishedTTL) {
			expired = append(expired, e.session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, session := range expired {
		session.Close()
	}
	return len(expired)
}
