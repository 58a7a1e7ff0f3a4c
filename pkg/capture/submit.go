package capture

import (
	"context"
	"fmt"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/recognition"
)

// Submitter consumes the captured (and, for registration, post-processed)
// image and completes the session. The returned score is meaningful for
// verification only.
type Submitter interface {
	Submit(ctx context.Context, image []byte) (float64, error)
}

// CredentialStore receives the processed portrait on registration. The
// pipeline itself persists nothing.
type CredentialStore interface {
	SaveImage(ctx context.Context, subject string, image []byte) error
}

// RegistrationSubmitter hands the cropped portrait to the credential store.
type RegistrationSubmitter struct {
	Store   CredentialStore
	Subject string
}

// Submit stores the portrait. Store failures surface as submission errors.
func (s *RegistrationSubmitter) Submit(ctx context.Context, image []byte) (float64, error) {
	if err := s.Store.SaveImage(ctx, s.Subject, image); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	return 0, nil
}

// Extractor produces a descriptor from a captured still.
type Extractor interface {
	Extract(image []byte) (recognition.Descriptor, error)
}

// VerificationSubmitter extracts a descriptor from the capture and matches
// it against the enrolled reference. Zero bounds use the matcher defaults.
type VerificationSubmitter struct {
	Extractor   Extractor
	Reference   recognition.Descriptor
	Threshold   float64
	MaxDistance float64
}

// Submit returns the match score, or a MismatchError carrying the score
// when the face does not match. Extraction rejections (no face, multiple
// faces) are terminal here, unlike during live guidance.
func (s *VerificationSubmitter) Submit(ctx context.Context, image []byte) (float64, error) {
	candidate, err := s.Extractor.Extract(image)
	if err != nil {
		return 0, err
	}

	result := recognition.MatchWith(s.Reference, candidate, s.Threshold, s.MaxDistance)
	if !result.IsMatch {
		return result.Score, &MismatchError{Score: result.Score}
	}
	return result.Score, nil
}
