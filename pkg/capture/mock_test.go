package capture

import (
	"context"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/camera"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/detection"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/recognition"
)

type MockDetector struct {
	LoadFunc   func(ctx context.Context) error
	LoadedFunc func() bool
	DetectFunc func(frame *camera.Frame) ([]detection.Detection, error)
}

func (m *MockDetector) Load(ctx context.Context) error {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return nil
}

func (m *MockDetector) Loaded() bool {
	if m.LoadedFunc != nil {
		return m.LoadedFunc()
	}
	return true
}

func (m *MockDetector) Detect(frame *camera.Frame) ([]detection.Detection, error) {
	if m.DetectFunc != nil {
		return m.DetectFunc(frame)
	}
	return nil, nil
}

type MockSubmitter struct {
	SubmitFunc func(ctx context.Context, image []byte) (float64, error)
}

func (m *MockSubmitter) Submit(ctx context.Context, image []byte) (float64, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, image)
	}
	return 0, nil
}

type MockSource struct {
	StartFunc        func(ctx context.Context) error
	CurrentFrameFunc func() (*camera.Frame, error)
	ready            chan struct{}
	released         bool
}

func NewMockSource() *MockSource {
	ready := make(chan struct{})
	close(ready)
	return &MockSource{ready: ready}
}

func (m *MockSource) Start(ctx context.Context) error {
	if m.StartFunc != nil {
		return m.StartFunc(ctx)
	}
	return nil
}

func (m *MockSource) Ready() <-chan struct{} {
	return m.ready
}

func (m *MockSource) CurrentFrame() (*camera.Frame, error) {
	if m.CurrentFrameFunc != nil {
		return m.CurrentFrameFunc()
	}
	return &camera.Frame{Data: []byte("frame"), Width: 600, Height: 800}, nil
}

func (m *MockSource) Release() {
	m.released = true
}

type MockStore struct {
	SaveImageFunc func(ctx context.Context, subject string, image []byte) error
}

func (m *MockStore) SaveImage(ctx context.Context, subject string, image []byte) error {
	if m.SaveImageFunc != nil {
		return m.SaveImageFunc(ctx, subject, image)
	}
	return nil
}

type MockExtractor struct {
	ExtractFunc func(image []byte) (recognition.Descriptor, error)
}

func (m *MockExtractor) Extract(image []byte) (recognition.Descriptor, error) {
	if m.ExtractFunc != nil {
		return m.ExtractFunc(image)
	}
	return recognition.Descriptor{}, nil
}
