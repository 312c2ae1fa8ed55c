package onboarding

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// DefaultSignatureDelay is how long a signature takes to be captured before the session advances.
const DefaultSignatureDelay = time.Second

// callTimeout bounds how long a caller waits for the session goroutine.
const callTimeout = 2 * time.Second

// ErrClosed is returned by calls made after the session was disposed.
var ErrClosed = errors.New("onboarding session is closed")

// ClientDetails is what the first step collects.
type ClientDetails struct {
	CompanyName string `json:"company_name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// ProjectDetails is what the second step collects.
type ProjectDetails struct {
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	Budget   string `json:"budget"`
	Timeline string `json:"timeline"`
}

// Details aggregates everything the wizard gathers before the agreement is signed.
type Details struct {
	Client  ClientDetails  `json:"client"`
	Project ProjectDetails `json:"project"`
}

// StepView pairs a step with its indicator state.
type StepView struct {
	Step
	State StepState `json:"state"`
}

// State is a snapshot of the session handed to renderers.
type State struct {
	ID              string     `json:"id"`
	Step            Step       `json:"step"`
	Steps           []StepView `json:"steps"`
	StepNumber      int        `json:"step_number"`
	TotalSteps      int        `json:"total_steps"`
	Progress        float64    `json:"progress"`
	ProgressRounded int        `json:"progress_rounded"`
	Terminal        bool       `json:"terminal"`
	Signing         bool       `json:"signing"`
	Details         Details    `json:"details"`
}

// CompletionFunc receives the collected details once a session reaches its last step.
// It runs on the session goroutine and must not call back into the session.
type CompletionFunc func(sessionID string, details Details)

// SessionConfig carries the knobs shared by every session of a registry.
type SessionConfig struct {
	Steps          []Step
	SignatureDelay time.Duration
	OnComplete     CompletionFunc
	Logger         *zap.Logger
}

type action int

const (
	actionState action = iota
	actionNext
	actionPrevious
	actionSign
	actionDetails
)

// command envelopes a request for the session goroutine.
type command struct {
	action  action
	details Details
	reply   chan State
}

// Session owns one StepFlow and the details gathered along the way. A single
// goroutine owns the state, including the pending signature timer.
type Session struct {
	id         string
	flow       *StepFlow
	details    Details
	signing    bool
	completed  bool
	finished   atomic.Bool
	delay      time.Duration
	onComplete CompletionFunc
	logger     *zap.Logger

	commands  chan command
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession builds the flow and starts the session goroutine.
func NewSession(id string, cfg SessionConfig) (*Session, error) {
	steps := cfg.Steps
	if steps == nil {
		steps = DefaultSteps()
	}
	flow, err := NewStepFlow(steps)
	if err != nil {
		return nil, err
	}
	delay := cfg.SignatureDelay
	if delay <= 0 {
		delay = DefaultSignatureDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{
		id:         id,
		flow:       flow,
		delay:      delay,
		onComplete: cfg.OnComplete,
		logger:     logger.With(zap.String("session", id)),
		commands:   make(chan command),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go s.loop()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) loop() {
	var (
		timer  *time.Timer
		signed <-chan time.Time
	)
	defer close(s.done)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	// A single-step flow starts out terminal.
	s.checkCompletion()

	for {
		select {
		case cmd := <-s.commands:
			switch cmd.action {
			case actionNext:
				if s.navigable() && !s.flow.Current().RequiresSignature {
					s.flow.Advance()
					s.logger.Debug("next step", zap.Int("step", s.flow.CurrentID()))
					s.checkCompletion()
				}
			case actionPrevious:
				if s.navigable() {
					s.flow.Retreat()
					s.logger.Debug("previous step", zap.Int("step", s.flow.CurrentID()))
				}
			case actionSign:
				if s.navigable() && s.flow.Current().RequiresSignature {
					s.signing = true
					timer = time.NewTimer(s.delay)
					signed = timer.C
					s.logger.Debug("signature started", zap.Duration("delay", s.delay))
				}
			case actionDetails:
				if !s.flow.IsTerminal() {
					s.details = cmd.details
				}
			}
			cmd.reply <- s.snapshot()
		case <-signed:
			timer, signed = nil, nil
			s.signing = false
			s.flow.Advance()
			s.logger.Info("signature captured", zap.Int("step", s.flow.CurrentID()))
			s.checkCompletion()
		case <-s.quit:
			return
		}
	}
}

// navigable is false while a signature is pending or once the wizard is finished.
func (s *Session) navigable() bool {
	return !s.signing && !s.flow.IsTerminal()
}

func (s *Session) checkCompletion() {
	if s.completed || !s.flow.IsTerminal() {
		return
	}
	s.completed = true
	s.finished.Store(true)
	s.logger.Info("onboarding complete", zap.String("company", s.details.Client.CompanyName))
	if s.onComplete != nil {
		s.onComplete(s.id, s.details)
	}
}

func (s *Session) snapshot() State {
	steps := s.flow.Steps()
	views := make([]StepView, 0, len(steps))
	for _, step := range steps {
		views = append(views, StepView{Step: step, State: s.flow.State(step.ID)})
	}
	progress := s.flow.ProgressPercent()
	return State{
		ID:              s.id,
		Step:            s.flow.Current(),
		Steps:           views,
		StepNumber:      s.flow.CurrentID(),
		TotalSteps:      s.flow.Len(),
		Progress:        progress,
		ProgressRounded: int(math.Round(progress)),
		Terminal:        s.flow.IsTerminal(),
		Signing:         s.signing,
		Details:         s.details,
	}
}

// call hands a command to the session goroutine and waits for the resulting snapshot.
func (s *Session) call(ctx context.Context, cmd command) (State, error) {
	cmd.reply = make(chan State, 1)

	select {
	case s.commands <- cmd:
	case <-s.quit:
		return State{}, ErrClosed
	case <-ctx.Done():
		return State{}, ctx.Err()
	case <-time.After(callTimeout):
		return State{}, errors.New("onboarding session is busy")
	}

	select {
	case state := <-cmd.reply:
		return state, nil
	case <-ctx.Done():
		return State{}, ctx.Err()
	case <-time.After(callTimeout):
		return State{}, errors.New("onboarding session did not respond")
	}
}

// State returns the current snapshot.
func (s *Session) State(ctx context.Context) (State, error) {
	return s.call(ctx, command{action: actionState})
}

// Next advances unless the current step needs a signature, a signature is pending, or the wizard is done.
func (s *Session) Next(ctx context.Context) (State, error) {
	return s.call(ctx, command{action: actionNext})
}

// Previous goes back one step unless a signature is pending or the wizard is done.
func (s *Session) Previous(ctx context.Context) (State, error) {
	return s.call(ctx, command{action: actionPrevious})
}

// Sign starts capturing the signature; after the configured delay the session
// advances on its own. Signing again while one is pending has no effect.
func (s *Session) Sign(ctx context.Context) (State, error) {
	return s.call(ctx, command{action: actionSign})
}

// UpdateDetails replaces the collected details. Ignored once the wizard is done.
func (s *Session) UpdateDetails(ctx context.Context, details Details) (State, error) {
	return s.call(ctx, command{action: actionDetails, details: details})
}

// Finished reports whether the session has reached its last step. It does not
// wait for the session goroutine.
func (s *Session) Finished() bool {
	return s.finished.Load()
}

// Close cancels any pending signature and stops the goroutine. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}
