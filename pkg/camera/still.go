package camera

import (
	"context"
	"sync"
	"time"
)

// StillSource serves a single decoded image as an endless frame stream.
// It backs the CLI flows and tests, where the subject is a file rather
// than a live device.
type StillSource struct {
	mu       sync.Mutex
	frame    Frame
	ready    chan struct{}
	started  bool
	released bool
}

// NewStillSource creates a source that repeatedly serves the given pixels.
func NewStillSource(data []byte, width, height int) *StillSource {
	return &StillSource{
		frame: Frame{Data: data, Width: width, Height: height},
		ready: make(chan struct{}),
	}
}

// Start marks the stream ready immediately.
func (s *StillSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return ErrReleased
	}
	if !s.started {
		s.started = true
		close(s.ready)
	}
	return nil
}

// Ready signals stream readiness.
func (s *StillSource) Ready() <-chan struct{} {
	return s.ready
}

// CurrentFrame returns the still frame stamped with the current time.
func (s *StillSource) CurrentFrame() (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil, ErrReleased
	}
	if !s.started {
		return nil, ErrNotStarted
	}

	f := s.frame
	f.Timestamp = time.Now()
	return &f, nil
}

// Release stops the stream. Subsequent reads fail.
func (s *StillSource) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
}

// Released reports whether Release has been called.
func (s *StillSource) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
