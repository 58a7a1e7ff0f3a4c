package camera

import (
	"context"
	"errors"
	"testing"
)

func TestStillSourceLifecycle(t *testing.T) {
	s := NewStillSource([]byte("jpeg"), 640, 480)

	if _, err := s.CurrentFrame(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted before Start, got %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	select {
	case <-s.Ready():
	default:
		t.Fatal("expected Ready closed after Start")
	}

	f, err := s.CurrentFrame()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(f.Data) != "jpeg" || f.Width != 640 || f.Height != 480 {
		t.Errorf("unexpected frame: %dx%d", f.Width, f.Height)
	}
	if f.Timestamp.IsZero() {
		t.Error("expected frame timestamped")
	}

	s.Release()
	if !s.Released() {
		t.Error("expected released")
	}
	if _, err := s.CurrentFrame(); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased after Release, got %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased on restart, got %v", err)
	}
}

func TestStillSourceStartIdempotent(t *testing.T) {
	s := NewStillSource([]byte("jpeg"), 640, 480)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("second start failed: %v", err)
	}
}

func TestAccessError(t *testing.T) {
	inner := errors.New("EBUSY")
	err := &AccessError{Reason: ReasonInUse, Device: "/dev/video0", Err: inner}

	if err.Error() != "camera /dev/video0 in use: EBUSY" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to expose the cause")
	}

	var ae *AccessError
	if !errors.As(error(err), &ae) {
		t.Error("expected errors.As to match")
	}
}

func TestAccessReasonString(t *testing.T) {
	tests := []struct {
		reason AccessReason
		want   string
	}{
		{ReasonPermissionDenied, "permission denied"},
		{ReasonNotFound, "not found"},
		{ReasonInUse, "in use"},
		{AccessReason(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.reason.String(); got != tt.want {
			t.Errorf("%d: expected %q, got %q", tt.reason, tt.want, got)
		}
	}
}
