package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/camera"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/capture"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/config"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/detection"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/guidance"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/imaging"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/logging"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/models"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/recognition"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/server"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/storage"
)

func thresholdsFromConfig(c *config.Config) guidance.Thresholds {
	return guidance.Thresholds{
		CenterX: c.Guidance.CenterThresholdX,
		CenterY: c.Guidance.CenterThresholdY,
		SizeMin: c.Guidance.SizeMinThreshold,
		SizeMax: c.Guidance.SizeMaxThreshold,
	}
}

func captureConfig(c *config.Config, mode guidance.Mode) capture.Config {
	return capture.Config{
		Mode:              mode,
		Thresholds:        thresholdsFromConfig(c),
		DetectionInterval: time.Duration(c.Capture.DetectionIntervalMS) * time.Millisecond,
		AutoCaptureDelay:  time.Duration(c.Capture.AutoCaptureDelayMS) * time.Millisecond,
		SuccessDisplay:    time.Duration(c.Capture.SuccessDisplayMS) * time.Millisecond,
		TargetAspectRatio: c.Capture.TargetAspectRatio,
	}
}

func stillSourceFromFile(path string) (*camera.StillSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	_, width, height, err := imaging.Decode(data)
	if err != nil {
		return nil, err
	}
	return camera.NewStillSource(data, width, height), nil
}

// runSession drives a session to its terminal state, printing guidance
// along the way. Errors are not retried from the CLI: the first Error
// state closes the session.
func runSession(ctx context.Context, s *capture.Session) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		var lastMsg string
		for {
			select {
			case ev := <-s.Events():
				if ev.Guidance != nil && ev.Guidance.Message != lastMsg {
					lastMsg = ev.Guidance.Message
					fmt.Printf("  [%s] %s\n", ev.Guidance.Color, ev.Guidance.Message)
				}
				if ev.State == capture.StateError {
					s.Close()
				}
			case <-done:
				return
			}
		}
	}()

	return s.Run(ctx)
}

func cmdRegister(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s", commands["register"].Usage)
	}
	subject, imagePath := args[0], args[1]

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	store, err := storage.NewFileStore(cfg.Storage.DataDir, cfg.Storage.EncryptionEnabled)
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}
	if store.Exists(subject) {
		return fmt.Errorf("subject '%s' is already enrolled. Run 'facegate remove %s' first", subject, subject)
	}

	source, err := stillSourceFromFile(imagePath)
	if err != nil {
		return err
	}

	detector := detection.NewDetector(cfg.Models.Path, nil)
	detector.SetMinConfidence(cfg.Models.MinConfidence)
	defer func() { _ = detector.Close() }()

	session := capture.NewSession(
		captureConfig(cfg, guidance.ModeRegistration),
		source,
		detector,
		&capture.RegistrationSubmitter{Store: store, Subject: subject},
	)

	fmt.Printf("Registering '%s' from %s...\n", subject, imagePath)
	if err := runSession(context.Background(), session); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Printf("Registered '%s'.\n", subject)
	return nil
}

func cmdVerify(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s", commands["verify"].Usage)
	}
	subject, imagePath := args[0], args[1]

	store, err := storage.NewFileStore(cfg.Storage.DataDir, cfg.Storage.EncryptionEnabled)
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	cred, err := store.Load(subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("subject '%s' is not enrolled", subject)
		}
		return err
	}

	extractor := recognition.NewExtractor(cfg.Models.Path, nil)
	defer func() { _ = extractor.Close() }()
	if err := extractor.Load(context.Background()); err != nil {
		return err
	}

	// The reference descriptor is computed from the enrolled portrait on
	// first use and cached on the credential.
	if !cred.HasDescriptor() {
		desc, err := extractor.Extract(cred.Image)
		if err != nil {
			return fmt.Errorf("failed to extract enrolled descriptor: %w", err)
		}
		cred.SetDescriptor(desc)
		if err := store.UpdateDescriptor(subject, desc); err != nil {
			logging.WithError(err).Warn("failed to cache enrolled descriptor")
		}
	}
	reference, err := cred.Reference()
	if err != nil {
		return err
	}

	source, err := stillSourceFromFile(imagePath)
	if err != nil {
		return err
	}

	detector := detection.NewDetector(cfg.Models.Path, nil)
	detector.SetMinConfidence(cfg.Models.MinConfidence)
	defer func() { _ = detector.Close() }()

	session := capture.NewSession(
		captureConfig(cfg, guidance.ModeVerification),
		source,
		detector,
		&capture.VerificationSubmitter{
			Extractor:   extractor,
			Reference:   reference,
			Threshold:   cfg.Matcher.Threshold,
			MaxDistance: cfg.Matcher.MaxDistance,
		},
	)

	fmt.Printf("Verifying '%s' against %s...\n", subject, imagePath)

	if err := runSession(context.Background(), session); err != nil {
		var mismatch *capture.MismatchError
		if errors.As(err, &mismatch) {
			fmt.Printf("NOT VERIFIED: confidence %.2f%% below threshold\n", mismatch.Score*100)
			return fmt.Errorf("verification mismatch")
		}
		return fmt.Errorf("verification failed: %w", err)
	}

	if uerr := store.UpdateLastVerified(subject); uerr != nil {
		logging.WithError(uerr).Warn("failed to update verification timestamp")
	}
	fmt.Printf("VERIFIED: confidence %.2f%%\n", session.Score()*100)
	return nil
}

func cmdServe(args []string) error {
	extractor := recognition.NewExtractor(cfg.Models.Path, nil)
	defer func() { _ = extractor.Close() }()

	fmt.Println("Loading recognition models...")
	if err := extractor.Load(context.Background()); err != nil {
		return err
	}

	srv := server.New(extractor)
	srv.SetMatcher(cfg.Matcher.Threshold, cfg.Matcher.MaxDistance)

	fmt.Printf("Serving verification API on %s\n", cfg.Server.Listen)
	return srv.ListenAndServe(cfg.Server.Listen)
}

func cmdModels(args []string) error {
	modelDir := cfg.Models.Path
	if len(args) > 0 {
		modelDir = args[0]
	}

	fmt.Printf("Downloading model bundles to %s...\n", modelDir)
	if err := models.Download(modelDir, models.DefaultBundles()); err != nil {
		return err
	}

	fmt.Println("All model bundles downloaded.")
	return nil
}

func cmdList(args []string) error {
	store, err := storage.NewFileStore(cfg.Storage.DataDir, cfg.Storage.EncryptionEnabled)
	if err != nil {
		return err
	}

	subjects, err := store.List()
	if err != nil {
		return err
	}

	if len(subjects) == 0 {
		fmt.Println("No visitors enrolled.")
		return nil
	}

	fmt.Println("Enrolled visitors:")
	for _, subject := range subjects {
		fmt.Printf("  - %s\n", subject)
	}
	fmt.Printf("\nTotal: %d\n", len(subjects))
	return nil
}

func cmdRemove(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: %s", commands["remove"].Usage)
	}
	subject := args[0]

	store, err := storage.NewFileStore(cfg.Storage.DataDir, cfg.Storage.EncryptionEnabled)
	if err != nil {
		return err
	}

	if err := store.Delete(subject); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("subject '%s' is not enrolled", subject)
		}
		return err
	}

	fmt.Printf("Removed '%s'.\n", subject)
	return nil
}
