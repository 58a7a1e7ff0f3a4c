package capture

import (
	"errors"
	"fmt"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/camera"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/models"
)

// ErrSubmission is the submission transport failure. Terminal for the
// attempt; the user may retry.
var ErrSubmission = errors.New("submission failed")

// ErrNotRetryable is returned by Retry when the session error is fatal
// (model load or camera acquisition) or the session is not in Error state.
var ErrNotRetryable = errors.New("session error is not retryable")

// MismatchError is the expected negative verification outcome, carrying
// the computed score for display.
type MismatchError struct {
	Score float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("face does not match enrolled credential (score %.2f%%)", e.Score*100)
}

// fatal reports whether err ends the session rather than the attempt.
func fatal(err error) bool {
	var accessErr *camera.AccessError
	return errors.Is(err, models.ErrModelLoad) || errors.As(err, &accessErr)
}
