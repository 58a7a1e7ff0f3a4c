package capture

import "testing"

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to State }{
		{StateLoadingModels, StateInitializingCamera},
		{StateLoadingModels, StateError},
		{StateInitializingCamera, StateGuiding},
		{StateInitializingCamera, StateError},
		{StateGuiding, StateCapturing},
		{StateGuiding, StateError},
		{StateCapturing, StateProcessingImage},
		{StateCapturing, StateSubmitting},
		{StateCapturing, StateError},
		{StateProcessingImage, StateSubmitting},
		{StateProcessingImage, StateError},
		{StateSubmitting, StateSuccess},
		{StateSubmitting, StateError},
		{StateError, StateGuiding},
	}
	for _, tt := range allowed {
		if !CanTransition(tt.from, tt.to) {
			t.Errorf("expected %s -> %s allowed", tt.from, tt.to)
		}
	}

	blocked := []struct{ from, to State }{
		{StateLoadingModels, StateGuiding},
		{StateGuiding, StateSubmitting},
		{StateGuiding, StateSuccess},
		{StateSuccess, StateGuiding},
		{StateSuccess, StateError},
		{StateError, StateCapturing},
		{StateSubmitting, StateGuiding},
	}
	for _, tt := range blocked {
		if CanTransition(tt.from, tt.to) {
			t.Errorf("expected %s -> %s blocked", tt.from, tt.to)
		}
	}
}

func TestStateString(t *testing.T) {
	if StateGuiding.String() != "guiding" {
		t.Errorf("unexpected name: %s", StateGuiding)
	}
	if State(99).String() != "unknown" {
		t.Errorf("unexpected name for out-of-range state: %s", State(99))
	}
}
