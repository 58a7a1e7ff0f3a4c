package capture

// State is the capture session state. Exactly one state is current per
// session; Success and Error are terminal until the user retries or the
// session closes.
type State int

const (
	StateLoadingModels State = iota
	StateInitializingCamera
	StateGuiding
	StateCapturing
	StateProcessingImage
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoadingModels:
		return "loading_models"
	case StateInitializingCamera:
		return "initializing_camera"
	case StateGuiding:
		return "guiding"
	case StateCapturing:
		return "capturing"
	case StateProcessingImage:
		return "processing_image"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

var transitions = map[State][]State{
	StateLoadingModels:      {StateInitializingCamera, StateError},
	StateInitializingCamera: {StateGuiding, StateError},
	StateGuiding:            {StateCapturing, StateError},
	StateCapturing:          {StateProcessingImage, StateSubmitting, StateError},
	StateProcessingImage:    {StateSubmitting, StateError},
	StateSubmitting:         {StateSuccess, StateError},
	StateError:              {StateGuiding},
	StateSuccess:            {},
}

// CanTransition reports whether the state machine allows moving from one
// state to another.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
