package detection

type MockEngine struct {
	DetectFunc func(data []byte) ([]Detection, error)
	CloseFunc  func()
}

func (m *MockEngine) Detect(data []byte) ([]Detection, error) {
	if m.DetectFunc != nil {
		return m.DetectFunc(data)
	}
	return nil, nil
}

func (m *MockEngine) Close() {
	if m.CloseFunc != nil {
		m.CloseFunc()
	}
}
