// Package session drives a capture through Idle, Capturing, Recognizing,
// Solving and Displaying (or Failed). Every submission starts a new
// generation; results that arrive for an older generation are discarded.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-equation-solver/internal/equation"
	"go-equation-solver/internal/observability"
	"go-equation-solver/internal/recognition"
)

// Recognizer extracts an equation string from a captured image. CheckImage
// screens a payload before it is accepted for background recognition.
type Recognizer interface {
	CheckImage(raw recognition.RawImage) error
	Recognize(ctx context.Context, raw recognition.RawImage) (recognition.Recognition, error)
}

const (
	SourceImage = "image"
	SourceText  = "text"
)

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID          string                   `json:"id"`
	State       State                    `json:"state"`
	Source      string                   `json:"source,omitempty"`
	Equation    string                   `json:"equation,omitempty"`
	Recognition *recognition.Recognition `json:"recognition,omitempty"`
	Result      *equation.SolveResult    `json:"result,omitempty"`
	Reason      string                   `json:"reason,omitempty"`
	Generation  uint64                   `json:"generation"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

type Session struct {
	id         string
	recognizer Recognizer
	now        func() time.Time

	mu          sync.Mutex
	state       State
	source      string
	equation    string
	recognition *recognition.Recognition
	result      *equation.SolveResult
	reason      string
	generation  uint64
	updatedAt   time.Time

	// cancel stops the in-flight recognition, if any. done is closed once
	// the current generation has settled.
	cancel context.CancelFunc
	done   chan struct{}
}

func newSession(id string, recognizer Recognizer, now func() time.Time) *Session {
	done := make(chan struct{})
	close(done)
	return &Session{
		id:         id,
		recognizer: recognizer,
		now:        now,
		state:      StateIdle,
		updatedAt:  now(),
		done:       done,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:          s.id,
		State:       s.state,
		Source:      s.source,
		Equation:    s.equation,
		Recognition: s.recognition,
		Result:      s.result,
		Reason:      s.reason,
		Generation:  s.generation,
		UpdatedAt:   s.updatedAt,
	}
}

// StartCapture opens (or reopens) the capture step. Any recognition still
// running is cancelled and its result will be discarded.
func (s *Session) StartCapture(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fireLocked(ctx, EventStartCapture); err != nil {
		return s.snapshotLocked(), err
	}
	s.supersedeLocked()
	s.clearLocked()
	s.settleLocked()
	return s.snapshotLocked(), nil
}

// SubmitImage starts recognition of raw in the background and returns
// immediately in the Recognizing state. The work outlives ctx's cancellation
// but keeps its values, so logs and spans stay correlated with the request.
// An image the recognizer refuses leaves the session untouched.
func (s *Session) SubmitImage(ctx context.Context, raw recognition.RawImage) (Snapshot, error) {
	if err := s.recognizer.CheckImage(raw); err != nil {
		return s.Snapshot(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fireLocked(ctx, EventSubmitImage); err != nil {
		return s.snapshotLocked(), err
	}
	gen := s.supersedeLocked()
	s.settleLocked()
	s.clearLocked()
	s.source = SourceImage

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		rec, err := s.recognizer.Recognize(runCtx, raw)
		s.complete(runCtx, gen, rec, err)
	}()

	return s.snapshotLocked(), nil
}

// SubmitEquation solves already recognized or typed text synchronously.
func (s *Session) SubmitEquation(ctx context.Context, text string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fireLocked(ctx, EventSubmitEquation); err != nil {
		return s.snapshotLocked(), err
	}
	s.supersedeLocked()
	s.clearLocked()
	s.source = SourceText
	s.solveLocked(ctx, text)
	s.settleLocked()
	return s.snapshotLocked(), nil
}

// Reset returns the session to Idle from any state.
func (s *Session) Reset(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fireLocked(ctx, EventReset); err != nil {
		return s.snapshotLocked(), err
	}
	s.supersedeLocked()
	s.clearLocked()
	s.settleLocked()
	return s.snapshotLocked(), nil
}

// Wait blocks until the current generation settles or ctx is done. A
// submission made while waiting extends the wait to the new generation.
func (s *Session) Wait(ctx context.Context) (Snapshot, error) {
	for {
		s.mu.Lock()
		done := s.done
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return s.Snapshot(), ctx.Err()
		case <-done:
		}

		s.mu.Lock()
		if s.done == done {
			snap := s.snapshotLocked()
			s.mu.Unlock()
			return snap, nil
		}
		s.mu.Unlock()
	}
}

// Close cancels any in-flight recognition. The session must not be used
// afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
	s.settleLocked()
}

func (s *Session) lastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// complete applies the outcome of the recognition started for gen.
func (s *Session) complete(ctx context.Context, gen uint64, rec recognition.Recognition, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := observability.LoggerWithTrace(ctx).With(
		zap.String("session_id", s.id),
		zap.Uint64("generation", gen),
	)

	if gen != s.generation {
		logger.Debug("discarding stale recognition", zap.Uint64("current_generation", s.generation))
		staleCounter.Add(ctx, 1)
		return
	}

	s.recognition = &rec
	if err != nil {
		if !errors.Is(err, recognition.ErrRecognitionFailed) {
			logger.Warn("recognition aborted", zap.Error(err))
		}
		s.reason = err.Error()
		s.equation = rec.Equation
		s.mustFireLocked(ctx, EventRecognitionFailed)
		s.settleLocked()
		return
	}

	s.mustFireLocked(ctx, EventRecognized)
	s.solveLocked(ctx, rec.Equation)
	s.settleLocked()
}

// solveLocked runs the solver for a session already in Solving.
func (s *Session) solveLocked(ctx context.Context, text string) {
	result := equation.SolveInput(text)
	s.equation = result.Normalized
	s.result = &result
	if !result.OK() {
		s.reason = result.Solution
	}
	s.mustFireLocked(ctx, EventSolved)
}

func (s *Session) fireLocked(ctx context.Context, e Event) error {
	from := s.state
	to, err := Next(from, e)
	if err != nil {
		return err
	}
	s.state = to
	s.updatedAt = s.now()
	recordTransition(ctx, s.id, from, to, e)
	return nil
}

// mustFireLocked fires an event that the lifecycle guarantees is valid.
func (s *Session) mustFireLocked(ctx context.Context, e Event) {
	if err := s.fireLocked(ctx, e); err != nil {
		panic(err)
	}
}

// supersedeLocked cancels in-flight work and starts a new generation.
func (s *Session) supersedeLocked() uint64 {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	return s.generation
}

func (s *Session) settleLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *Session) clearLocked() {
	s.source = ""
	s.equation = ""
	s.recognition = nil
	s.result = nil
	s.reason = ""
}
