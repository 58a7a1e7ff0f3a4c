// Package capture runs the live capture workflow: model loading, camera
// acquisition, the guidance polling loop, auto-capture, post-processing,
// and submission. One Session is one pass through that workflow.
package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/camera"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/detection"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/guidance"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/imaging"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/logging"
)

const (
	// DetectionInterval is the guidance polling period.
	DetectionInterval = 150 * time.Millisecond

	// SuccessDisplay is how long a successful session lingers before
	// closing itself.
	SuccessDisplay = 2 * time.Second

	// TargetAspectRatio is the portrait ratio registration images are
	// cropped to.
	TargetAspectRatio = 0.75
)

// Detector is the per-frame face detector the guidance loop polls.
type Detector interface {
	Load(ctx context.Context) error
	Loaded() bool
	Detect(frame *camera.Frame) ([]detection.Detection, error)
}

// Config holds per-session settings. Zero values fall back to the
// contract defaults.
type Config struct {
	Mode              guidance.Mode
	Thresholds        guidance.Thresholds
	DetectionInterval time.Duration
	AutoCaptureDelay  time.Duration
	SuccessDisplay    time.Duration
	TargetAspectRatio float64
}

func (c Config) withDefaults() Config {
	if c.Thresholds == (guidance.Thresholds{}) {
		c.Thresholds = guidance.DefaultThresholds()
	}
	if c.DetectionInterval <= 0 {
		c.DetectionInterval = DetectionInterval
	}
	if c.AutoCaptureDelay <= 0 {
		c.AutoCaptureDelay = guidance.AutoCaptureDelay
	}
	if c.SuccessDisplay <= 0 {
		c.SuccessDisplay = SuccessDisplay
	}
	if c.TargetAspectRatio <= 0 {
		c.TargetAspectRatio = TargetAspectRatio
	}
	return c
}

// Event is a session observation: a state change, a guidance update, or a
// terminal result. Score is set on verification outcomes.
type Event struct {
	State    State
	Guidance *guidance.Result
	Score    float64
	Err      error
}

// Session drives one capture workflow. Create with NewSession, drive with
// Run, observe through Events. Retry moves a recoverable Error back to
// Guiding; Close cancels everything and releases the camera.
type Session struct {
	id        string
	cfg       Config
	source    camera.Source
	detector  Detector
	submitter Submitter
	log       *logrus.Entry

	mu        sync.Mutex
	state     State
	lastErr   error
	retryable bool
	score     float64
	cancel    context.CancelFunc

	retryCh chan struct{}
	events  chan Event
}

// NewSession creates a session. The initial state is LoadingModels, or
// InitializingCamera when the detector models are already cached
// process-wide.
func NewSession(cfg Config, source camera.Source, detector Detector, submitter Submitter) *Session {
	id := uuid.NewString()
	s := &Session{
		id:        id,
		cfg:       cfg.withDefaults(),
		source:    source,
		detector:  detector,
		submitter: submitter,
		log:       logging.Component("capture").WithField("session", id[:8]),
		state:     StateLoadingModels,
		retryCh:   make(chan struct{}, 1),
		events:    make(chan Event, 64),
	}
	if detector.Loaded() {
		s.state = StateInitializingCamera
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastError returns the error of the current Error state, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Score returns the verification score of the last submission outcome,
// zero until one exists.
func (s *Session) Score() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Events returns the session event stream. Events are dropped rather than
// blocking the workflow when the consumer falls behind.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Run drives the session to completion. It returns nil after Success, the
// session error if the session was closed in an Error state, or the
// context error on cancellation. The camera is released on every exit
// path.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer s.source.Release()

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.publish(Event{State: s.State()})

	if !s.detector.Loaded() {
		if err := s.detector.Load(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			_ = s.failAndWait(ctx, err)
			return err
		}
	}
	s.setState(StateInitializingCamera)

	if err := s.source.Start(ctx); err != nil {
		_ = s.failAndWait(ctx, err)
		return err
	}
	select {
	case <-s.source.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}

	for {
		err := s.attempt(ctx)
		if err == nil {
			s.setState(StateSuccess)
			select {
			case <-time.After(s.cfg.SuccessDisplay):
			case <-ctx.Done():
			}
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if waitErr := s.failAndWait(ctx, err); waitErr != nil {
			return err
		}
	}
}

// Retry moves a recoverable Error state back into Guiding.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateError || !s.retryable {
		return ErrNotRetryable
	}

	select {
	case s.retryCh <- struct{}{}:
	default:
	}
	return nil
}

// Close cancels the session from any state.
func (s *Session) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

type detectOutcome struct {
	frame *camera.Frame
	dets  []detection.Detection
	err   error
}

// attempt runs the guidance loop until auto-capture fires, then carries
// the captured frame through processing and submission.
func (s *Session) attempt(ctx context.Context) error {
	s.setState(StateGuiding)

	var sched guidance.SchedulerState
	busy := false
	results := make(chan detectOutcome, 1)
	ticker := time.NewTicker(s.cfg.DetectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			// A tick that lands while detection is still running is
			// skipped, never queued.
			if busy {
				continue
			}
			frame, err := s.source.CurrentFrame()
			if err != nil {
				s.log.WithError(err).Debug("frame read failed during guidance")
				sched = guidance.SchedulerState{}
				s.publishGuidance(advisoryResult())
				continue
			}
			busy = true
			go func(f *camera.Frame) {
				dets, derr := s.detector.Detect(f)
				select {
				case results <- detectOutcome{frame: f, dets: dets, err: derr}:
				case <-ctx.Done():
				}
			}(frame)

		case out := <-results:
			busy = false
			var res guidance.Result
			if out.err != nil {
				s.log.WithError(out.err).Debug("detection error during guidance")
				res = advisoryResult()
			} else {
				res = guidance.EvaluateWith(s.cfg.Thresholds, out.dets, out.frame.Width, out.frame.Height, s.cfg.Mode)
			}
			s.publishGuidance(res)

			var fire bool
			sched, fire = guidance.TickWithDelay(sched, res.Status, time.Now(), s.cfg.AutoCaptureDelay)
			if fire {
				return s.capture(ctx)
			}
		}
	}
}

// advisoryResult is the degraded guidance shown when detection itself
// fails. It never crosses the loop as an error.
func advisoryResult() guidance.Result {
	return guidance.Result{
		Status:  guidance.StatusNoFace,
		Message: "Hold on...",
		Color:   guidance.ColorBlue,
	}
}

func (s *Session) capture(ctx context.Context) error {
	s.setState(StateCapturing)

	frame, err := s.source.CurrentFrame()
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}
	img := frame.Data

	// Verification submits the captured frame as-is; only registration
	// portraits are cropped.
	if s.cfg.Mode == guidance.ModeRegistration {
		s.setState(StateProcessingImage)
		img, err = imaging.CropBytes(img, s.cfg.TargetAspectRatio)
		if err != nil {
			return err
		}
	}

	s.setState(StateSubmitting)
	score, err := s.submitter.Submit(ctx, img)
	s.mu.Lock()
	s.score = score
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if s.cfg.Mode == guidance.ModeVerification {
		s.publish(Event{State: StateSubmitting, Score: score})
	}
	return nil
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	prev := s.state
	if prev == next {
		s.mu.Unlock()
		return
	}
	if !CanTransition(prev, next) {
		s.mu.Unlock()
		s.log.Warnf("blocked state transition %s -> %s", prev, next)
		return
	}
	s.state = next
	if prev == StateError {
		s.lastErr = nil
	}
	s.mu.Unlock()

	s.log.Debugf("state %s -> %s", prev, next)
	s.publish(Event{State: next})
}

// failAndWait enters the Error state and blocks until the user retries or
// the session is closed. Returns nil when a retry was requested.
func (s *Session) failAndWait(ctx context.Context, err error) error {
	s.mu.Lock()
	prev := s.state
	s.state = StateError
	s.lastErr = err
	s.retryable = !fatal(err)
	s.mu.Unlock()

	ev := Event{State: StateError, Err: err}
	var mismatch *MismatchError
	if errors.As(err, &mismatch) {
		ev.Score = mismatch.Score
	}
	s.log.WithError(err).Warnf("session error (from %s)", prev)
	s.publish(ev)

	select {
	case <-s.retryCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) publishGuidance(res guidance.Result) {
	s.publish(Event{State: StateGuiding, Guidance: &res})
}

func (s *Session) publish(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
