package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/recognition"
)

func TestRegistrationSubmitter(t *testing.T) {
	var savedSubject string
	var savedImage []byte
	s := &RegistrationSubmitter{
		Store: &MockStore{
			SaveImageFunc: func(ctx context.Context, subject string, image []byte) error {
				savedSubject = subject
				savedImage = image
				return nil
			},
		},
		Subject: "alice",
	}

	score, err := s.Submit(context.Background(), []byte("portrait"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if score != 0 {
		t.Errorf("expected zero score for registration, got %f", score)
	}
	if savedSubject != "alice" || string(savedImage) != "portrait" {
		t.Error("expected portrait handed to the store")
	}
}

func TestRegistrationSubmitterStoreFailure(t *testing.T) {
	s := &RegistrationSubmitter{
		Store: &MockStore{
			SaveImageFunc: func(ctx context.Context, subject string, image []byte) error {
				return errors.New("disk full")
			},
		},
		Subject: "alice",
	}

	if _, err := s.Submit(context.Background(), []byte("portrait")); !errors.Is(err, ErrSubmission) {
		t.Errorf("expected ErrSubmission, got %v", err)
	}
}

func TestVerificationSubmitterMatch(t *testing.T) {
	var reference recognition.Descriptor
	s := &VerificationSubmitter{
		Extractor: &MockExtractor{
			ExtractFunc: func(image []byte) (recognition.Descriptor, error) {
				d := reference
				d[0] = 0.25
				return d, nil
			},
		},
		Reference: reference,
	}

	score, err := s.Submit(context.Background(), []byte("still"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if score != 0.75 {
		t.Errorf("expected score 0.75, got %f", score)
	}
}

func TestVerificationSubmitterMismatch(t *testing.T) {
	var reference recognition.Descriptor
	s := &VerificationSubmitter{
		Extractor: &MockExtractor{
			ExtractFunc: func(image []byte) (recognition.Descriptor, error) {
				d := reference
				d[0] = 0.75
				return d, nil
			},
		},
		Reference: reference,
	}

	_, err := s.Submit(context.Background(), []byte("still"))
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected MismatchError, got %v", err)
	}
	if mismatch.Score != 0.25 {
		t.Errorf("expected score 0.25 on the mismatch, got %f", mismatch.Score)
	}
	if fatal(err) {
		t.Error("expected a mismatch to stay retryable")
	}
}

func TestVerificationSubmitterConfiguredThreshold(t *testing.T) {
	// Distance 0.375 matches under the default 0.4 threshold but not under
	// a stricter configured 0.35.
	var reference recognition.Descriptor
	extractor := &MockExtractor{
		ExtractFunc: func(image []byte) (recognition.Descriptor, error) {
			d := reference
			d[0] = 0.375
			return d, nil
		},
	}

	loose := &VerificationSubmitter{Extractor: extractor, Reference: reference}
	if _, err := loose.Submit(context.Background(), []byte("still")); err != nil {
		t.Fatalf("expected a match under the default threshold, got %v", err)
	}

	strict := &VerificationSubmitter{
		Extractor:   extractor,
		Reference:   reference,
		Threshold:   0.35,
		MaxDistance: recognition.MaxDistance,
	}
	_, err := strict.Submit(context.Background(), []byte("still"))
	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected MismatchError under the stricter threshold, got %v", err)
	}
	if mismatch.Score != 0.625 {
		t.Errorf("expected score 0.625, got %f", mismatch.Score)
	}
}

func TestVerificationSubmitterExtractionRejection(t *testing.T) {
	s := &VerificationSubmitter{
		Extractor: &MockExtractor{
			ExtractFunc: func(image []byte) (recognition.Descriptor, error) {
				return recognition.Descriptor{}, recognition.ErrNoFaceDetected
			},
		},
	}

	if _, err := s.Submit(context.Background(), []byte("still")); !errors.Is(err, recognition.ErrNoFaceDetected) {
		t.Errorf("expected extraction rejection passed through, got %v", err)
	}
}
