// Package recognition extracts fixed-length face descriptors from still
// images and decides whether two descriptors belong to the same person.
// It uses dlib via go-face for detection, landmark alignment, and the
// embedding model.
package recognition

import (
	"context"
	"errors"
	"sync"

	"github.com/Kagami/go-face"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/logging"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/models"
)

// Descriptor is the 128-dimensional face embedding from dlib. Opaque to
// the pipeline; compared by distance, never by equality.
type Descriptor = face.Descriptor

// DescriptorLen is the embedding length, fixed by the recognition model.
const DescriptorLen = 128

// ErrNoFaceDetected is returned when the still image contains no face.
var ErrNoFaceDetected = errors.New("no face detected")

// ErrMultipleFaces is returned when the still image contains more than one
// face. Extraction requires a single unambiguous subject; the best
// detection is never silently picked.
var ErrMultipleFaces = errors.New("multiple faces detected")

// ErrNotLoaded is returned when extracting before models are loaded.
var ErrNotLoaded = errors.New("recognition models not loaded")

// Engine is the underlying detection+landmark+recognition model.
type Engine interface {
	Recognize(data []byte) ([]face.Face, error)
	Close()
}

// EngineFactory builds an Engine from a model directory.
type EngineFactory func(modelDir string) (Engine, error)

// Extractor produces face descriptors from captured stills. Loading is
// memoized process-wide through models.Loader, sharing one attempt across
// concurrent callers.
type Extractor struct {
	mu     sync.RWMutex
	engine Engine
	loader *models.Loader
}

// NewExtractor creates an extractor loading its engine from modelDir.
// A nil factory uses the go-face engine.
func NewExtractor(modelDir string, factory EngineFactory) *Extractor {
	if factory == nil {
		factory = newGoFaceEngine
	}

	e := &Extractor{}
	e.loader = models.NewLoader(func() error {
		engine, err := factory(modelDir)
		if err != nil {
			return err
		}
		e.mu.Lock()
		e.engine = engine
		e.mu.Unlock()
		logging.Component("recognition").Info("recognition engine loaded")
		return nil
	})
	return e
}

// Load blocks until the recognition engine is available.
func (e *Extractor) Load(ctx context.Context) error {
	return e.loader.Load(ctx)
}

// Loaded reports whether the engine is ready.
func (e *Extractor) Loaded() bool {
	return e.loader.Loaded()
}

// Extract returns the descriptor for the single face in imageData.
// Zero faces and multiple faces are both explicit rejections.
func (e *Extractor) Extract(imageData []byte) (Descriptor, error) {
	e.mu.RLock()
	engine := e.engine
	e.mu.RUnlock()

	if engine == nil {
		return Descriptor{}, ErrNotLoaded
	}

	faces, err := engine.Recognize(imageData)
	if err != nil {
		return Descriptor{}, err
	}

	switch {
	case len(faces) == 0:
		return Descriptor{}, ErrNoFaceDetected
	case len(faces) > 1:
		return Descriptor{}, ErrMultipleFaces
	}

	return faces[0].Descriptor, nil
}

// Close releases the engine.
func (e *Extractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.engine != nil {
		e.engine.Close()
		e.engine = nil
	}
	return nil
}
