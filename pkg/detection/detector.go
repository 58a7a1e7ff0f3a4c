// Package detection wraps the lightweight per-frame face detector that
// drives the live guidance loop. It is tuned for speed over precision;
// the heavier extraction model lives in pkg/recognition.
package detection

import (
	"context"
	"errors"
	"sync"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/camera"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/logging"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/models"
)

// MinConfidence is the minimum detection confidence kept.
const MinConfidence = 0.5

// Box is an axis-aligned bounding box in frame coordinates.
type Box struct {
	X, Y          int
	Width, Height int
}

// Center returns the box center.
func (b Box) Center() (float64, float64) {
	return float64(b.X) + float64(b.Width)/2, float64(b.Y) + float64(b.Height)/2
}

// Detection is a single face found in one frame.
type Detection struct {
	Box        Box
	Confidence float64
}

// ErrNotLoaded is returned when Detect is called before models are loaded.
var ErrNotLoaded = errors.New("detector models not loaded")

// Engine is the underlying detection model.
type Engine interface {
	Detect(data []byte) ([]Detection, error)
	Close()
}

// EngineFactory builds an Engine from a model directory.
type EngineFactory func(modelDir string) (Engine, error)

// Detector runs the lightweight model over single frames. Model loading is
// memoized process-wide via models.Loader: concurrent sessions share one
// load and a failed load can be retried.
type Detector struct {
	mu            sync.RWMutex
	engine        Engine
	loader        *models.Loader
	minConfidence float64
}

// NewDetector creates a detector loading its engine from modelDir.
// A nil factory uses the go-face engine.
func NewDetector(modelDir string, factory EngineFactory) *Detector {
	if factory == nil {
		factory = newGoFaceEngine
	}

	d := &Detector{minConfidence: MinConfidence}
	d.loader = models.NewLoader(func() error {
		engine, err := factory(modelDir)
		if err != nil {
			return err
		}
		d.mu.Lock()
		d.engine = engine
		d.mu.Unlock()
		logging.Component("detection").Info("detector engine loaded")
		return nil
	})
	return d
}

// SetMinConfidence overrides the confidence floor.
func (d *Detector) SetMinConfidence(min float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.minConfidence = min
}

// Load blocks until the detector engine is available. Safe for concurrent
// use; all callers share a single load attempt.
func (d *Detector) Load(ctx context.Context) error {
	return d.loader.Load(ctx)
}

// Loaded reports whether the engine is ready.
func (d *Detector) Loaded() bool {
	return d.loader.Loaded()
}

// Detect finds faces in one frame. Zero faces is a normal result and
// returns an empty slice, not an error.
func (d *Detector) Detect(frame *camera.Frame) ([]Detection, error) {
	d.mu.RLock()
	engine := d.engine
	min := d.minConfidence
	d.mu.RUnlock()

	if engine == nil {
		return nil, ErrNotLoaded
	}

	dets, err := engine.Detect(frame.Data)
	if err != nil {
		return nil, err
	}

	kept := dets[:0]
	for _, det := range dets {
		if det.Confidence >= min {
			kept = append(kept, det)
		}
	}
	return kept, nil
}

// Close releases the engine.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.engine != nil {
		d.engine.Close()
		d.engine = nil
	}
	return nil
}
