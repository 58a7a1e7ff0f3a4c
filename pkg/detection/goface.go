package detection

import (
	"fmt"

	"github.com/Kagami/go-face"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/models"
)

// goFaceEngine backs the detector with dlib via go-face.
type goFaceEngine struct {
	rec *face.Recognizer
}

func newGoFaceEngine(modelDir string) (Engine, error) {
	if err := models.Verify(modelDir, models.DefaultBundles()); err != nil {
		return nil, err
	}
	rec, err := face.NewRecognizer(modelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize face engine: %w", err)
	}
	return &goFaceEngine{rec: rec}, nil
}

func (e *goFaceEngine) Detect(data []byte) ([]Detection, error) {
	faces, err := e.rec.Recognize(data)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	dets := make([]Detection, len(faces))
	for i, f := range faces {
		rect := f.Rectangle
		dets[i] = Detection{
			Box: Box{
				X:      rect.Min.X,
				Y:      rect.Min.Y,
				Width:  rect.Dx(),
				Height: rect.Dy(),
			},
			// go-face does not report confidence; treat detections as firm.
			Confidence: 1.0,
		}
	}
	return dets, nil
}

func (e *goFaceEngine) Close() {
	e.rec.Close()
}
