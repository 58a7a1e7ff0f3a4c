// Package guidance classifies face position within a frame and decides,
// via a hold timer, when positioning has been stable long enough to
// auto-capture. Evaluation is a pure function over one frame's detections.
package guidance

import (
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/detection"
)

// Status classifies the guidance outcome for one frame.
type Status int

const (
	StatusNoFace Status = iota
	StatusMultipleFaces
	StatusTooFar
	StatusTooClose
	StatusOffCenter
	StatusValid
)

func (s Status) String() string {
	switch s {
	case StatusNoFace:
		return "no_face"
	case StatusMultipleFaces:
		return "multiple_faces"
	case StatusTooFar:
		return "too_far"
	case StatusTooClose:
		return "too_close"
	case StatusOffCenter:
		return "off_center"
	case StatusValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Color is the severity shown to the user.
type Color int

const (
	ColorRed Color = iota
	ColorYellow
	ColorGreen
	ColorBlue
)

func (c Color) String() string {
	switch c {
	case ColorRed:
		return "red"
	case ColorYellow:
		return "yellow"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	default:
		return "unknown"
	}
}

// DistanceClass buckets the face size relative to the frame.
type DistanceClass int

const (
	DistanceFar DistanceClass = iota
	DistanceClose
	DistanceOptimal
)

func (d DistanceClass) String() string {
	switch d {
	case DistanceFar:
		return "far"
	case DistanceClose:
		return "close"
	case DistanceOptimal:
		return "optimal"
	default:
		return "unknown"
	}
}

// Mode selects the flow the guidance is feeding.
type Mode int

const (
	ModeRegistration Mode = iota
	ModeVerification
)

// Result is the evaluation of one frame. Distance and FaceHeightRatio are
// meaningful only when Measured is true, which holds exactly when a single
// face was detected.
type Result struct {
	Status          Status
	Message         string
	Color           Color
	Measured        bool
	Distance        DistanceClass
	FaceHeightRatio float64
}

// Thresholds are the geometric validity bounds. Center thresholds are
// fractions of the frame dimensions; size thresholds bound box height over
// frame height.
type Thresholds struct {
	CenterX float64
	CenterY float64
	SizeMin float64
	SizeMax float64
}

// DefaultThresholds returns the contract thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CenterX: 0.45,
		CenterY: 0.40,
		SizeMin: 0.40,
		SizeMax: 0.60,
	}
}

// Evaluate classifies detections using the default thresholds.
func Evaluate(dets []detection.Detection, frameWidth, frameHeight int, mode Mode) Result {
	return EvaluateWith(DefaultThresholds(), dets, frameWidth, frameHeight, mode)
}

// EvaluateWith classifies detections against th. It never fails: anything
// short of a decisive state degrades to the most specific "not yet valid"
// status. The distance check runs before centering.
func EvaluateWith(th Thresholds, dets []detection.Detection, frameWidth, frameHeight int, mode Mode) Result {
	if len(dets) == 0 || frameWidth <= 0 || frameHeight <= 0 {
		return Result{
			Status:  StatusNoFace,
			Message: "Position your face in the frame",
			Color:   ColorRed,
		}
	}

	if len(dets) > 1 {
		return Result{
			Status:  StatusMultipleFaces,
			Message: "Multiple faces detected. Make sure only you are in frame",
			Color:   ColorRed,
		}
	}

	box := dets[0].Box
	ratio := float64(box.Height) / float64(frameHeight)

	if ratio < th.SizeMin {
		return Result{
			Status:          StatusTooFar,
			Message:         "Move closer",
			Color:           ColorYellow,
			Measured:        true,
			Distance:        DistanceFar,
			FaceHeightRatio: ratio,
		}
	}

	if ratio > th.SizeMax {
		return Result{
			Status:          StatusTooClose,
			Message:         "Move away",
			Color:           ColorYellow,
			Measured:        true,
			Distance:        DistanceClose,
			FaceHeightRatio: ratio,
		}
	}

	cx, cy := box.Center()
	w := float64(frameWidth)
	h := float64(frameHeight)
	centeredX := cx > w*th.CenterX && cx < w*(1-th.CenterX)
	centeredY := cy > h*th.CenterY && cy < h*(1-th.CenterY)

	if centeredX && centeredY {
		msg := "Capturing..."
		if mode == ModeVerification {
			msg = "Hold still..."
		}
		return Result{
			Status:          StatusValid,
			Message:         msg,
			Color:           ColorGreen,
			Measured:        true,
			Distance:        DistanceOptimal,
			FaceHeightRatio: ratio,
		}
	}

	return Result{
		Status:          StatusOffCenter,
		Message:         offCenterMessage(th, cx, cy, w, h, centeredX, centeredY),
		Color:           ColorYellow,
		Measured:        true,
		Distance:        DistanceOptimal,
		FaceHeightRatio: ratio,
	}
}

// offCenterMessage picks a directional hint. Directions assume the usual
// mirrored preview, so a face near the left edge of the image is nudged
// toward the user's right.
func offCenterMessage(th Thresholds, cx, cy, w, h float64, centeredX, centeredY bool) string {
	if !centeredX && !centeredY {
		return "Center your face"
	}
	if !centeredX {
		if cx <= w*th.CenterX {
			return "Move slightly right"
		}
		return "Move slightly left"
	}
	if cy <= h*th.CenterY {
		return "Move slightly down"
	}
	return "Move slightly up"
}
