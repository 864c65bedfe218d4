package landmark

// BuildSequences slices a frame stream into windows of seqLen frames
// with the given overlap ratio (0.0–0.9). Streams shorter than seqLen
// become a single window padded by repeating the last frame. Longer
// streams produce overlapping windows stepping by
// seqLen*(1-overlap), at least one frame.
func BuildSequences(frames [][]float64, seqLen int, overlap float64) [][][]float64 {
	if len(frames) == 0 || seqLen <= 0 {
		return nil
	}

	if len(frames) < seqLen {
		window := make([][]float64, seqLen)
		copy(window, frames)
		last := frames[len(frames)-1]
		for i := len(frames); i < seqLen; i++ {
			window[i] = last
		}
		return [][][]float64{window}
	}

	step := int(float64(seqLen) * (1.0 - overlap))
	if step < 1 {
		step = 1
	}

	var sequences [][][]float64
	for start := 0; start+seqLen <= len(frames); start += step {
		window := make([][]float64, seqLen)
		copy(window, frames[start:start+seqLen])
		sequences = append(sequences, window)
	}
	return sequences
}
