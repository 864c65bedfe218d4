// Package landmark defines the hand-landmark sample schema shared with
// the web collection page, and the frame-stream slicing used to turn
// raw recordings into fixed-length training sequences.
package landmark

import "fmt"

// Frame geometry. Two tracked hands, 21 landmarks per hand, three
// coordinates per landmark.
const (
	NumHands          = 2
	LandmarksPerHand  = 21
	CoordsPerLandmark = 3
	FeaturesPerHand   = LandmarksPerHand * CoordsPerLandmark // 63
	FeaturesPerFrame  = NumHands * FeaturesPerHand           // 126
)

// DefaultSequenceLength is the number of frames per training sequence.
// It must match the collection page's sequenceLength setting.
const DefaultSequenceLength = 30

// Sample is one recorded gesture sequence in the collection page's JSON
// schema.
type Sample struct {
	Label     string      `json:"label"`
	Landmarks [][]float64 `json:"landmarks"`
	Signer    string      `json:"signer"`
	Timestamp int64       `json:"timestamp"`
	Lighting  string      `json:"lighting"`
	Source    string      `json:"source,omitempty"`
}

// UpgradeFrame widens an old single-hand 63-feature frame to the
// current 126-feature layout by zero-padding the second hand. Frames
// already at the current width are returned unchanged; any other width
// is an error.
func UpgradeFrame(frame []float64) ([]float64, error) {
	switch len(frame) {
	case FeaturesPerFrame:
		return frame, nil
	case FeaturesPerHand:
		widened := make([]float64, FeaturesPerFrame)
		copy(widened, frame)
		return widened, nil
	default:
		return nil, fmt.Errorf("frame has %d features (want %d or %d)",
			len(frame), FeaturesPerFrame, FeaturesPerHand)
	}
}
