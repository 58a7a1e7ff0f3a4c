// Package camera provides the frame source abstraction for the guidance loop.
// The pipeline only consumes frames; device selection and permission policy
// belong to the embedding application.
package camera

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Frame is a single camera frame. Data holds the encoded image bytes
// (JPEG). Frames are owned by the source and borrowed read-only by the
// detector.
type Frame struct {
	Data      []byte
	Width     int
	Height    int
	Timestamp time.Time
}

// Source is a live frame stream. Start acquires the device; CurrentFrame
// returns the most recent frame once Ready has been signalled. Release must
// be called on every exit path so no device handle leaks.
type Source interface {
	Start(ctx context.Context) error
	Ready() <-chan struct{}
	CurrentFrame() (*Frame, error)
	Release()
}

// AccessReason classifies a camera acquisition failure.
type AccessReason int

const (
	ReasonPermissionDenied AccessReason = iota
	ReasonNotFound
	ReasonInUse
)

func (r AccessReason) String() string {
	switch r {
	case ReasonPermissionDenied:
		return "permission denied"
	case ReasonNotFound:
		return "not found"
	case ReasonInUse:
		return "in use"
	default:
		return "unknown"
	}
}

// AccessError is returned when a camera device cannot be acquired.
// It is fatal for the session.
type AccessError struct {
	Reason AccessReason
	Device string
	Err    error
}

func (e *AccessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("camera %s %s: %v", e.Device, e.Reason, e.Err)
	}
	return fmt.Sprintf("camera %s %s", e.Device, e.Reason)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// ErrReleased is returned when reading from a released source.
var ErrReleased = errors.New("camera source released")

// ErrNotStarted is returned when reading before the stream is ready.
var ErrNotStarted = errors.New("camera source not started")
