package recognition

import (
	"fmt"

	"github.com/Kagami/go-face"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/models"
)

type goFaceEngine struct {
	rec *face.Recognizer
}

func newGoFaceEngine(modelDir string) (Engine, error) {
	if err := models.Verify(modelDir, models.DefaultBundles()); err != nil {
		return nil, err
	}
	rec, err := face.NewRecognizer(modelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize recognition engine: %w", err)
	}
	return &goFaceEngine{rec: rec}, nil
}

func (e *goFaceEngine) Recognize(data []byte) ([]face.Face, error) {
	faces, err := e.rec.Recognize(data)
	if err != nil {
		return nil, fmt.Errorf("face recognition failed: %w", err)
	}
	return faces, nil
}

func (e *goFaceEngine) Close() {
	e.rec.Close()
}
