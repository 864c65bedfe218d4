package landmark

import "math/rand"

// Augmentation magnitudes. x and y coordinates stay roughly within
// [0,1]; z is left untouched.
const (
	jitterSigma = 0.005
	scaleMin    = 0.95
	scaleMax    = 1.05
	shiftRange  = 0.02
)

// Augment returns a perturbed copy of a landmark sequence: gaussian
// jitter, a per-landmark uniform scale, and a per-landmark uniform
// shift, each applied to x and y only.
func Augment(seq [][]float64, rng *rand.Rand) [][]float64 {
	out := make([][]float64, len(seq))
	for i, frame := range seq {
		out[i] = make([]float64, len(frame))
		copy(out[i], frame)
	}

	for hand := 0; hand < NumHands; hand++ {
		offset := hand * FeaturesPerHand
		for lm := 0; lm < LandmarksPerHand; lm++ {
			xi := offset + lm*CoordsPerLandmark
			yi := xi + 1

			sx := scaleMin + rng.Float64()*(scaleMax-scaleMin)
			sy := scaleMin + rng.Float64()*(scaleMax-scaleMin)
			dx := (rng.Float64()*2 - 1) * shiftRange
			dy := (rng.Float64()*2 - 1) * shiftRange

			for _, frame := range out {
				if yi >= len(frame) {
					continue
				}
				frame[xi] = (frame[xi]+rng.NormFloat64()*jitterSigma)*sx + dx
				frame[yi] = (frame[yi]+rng.NormFloat64()*jitterSigma)*sy + dy
			}
		}
	}
	return out
}
