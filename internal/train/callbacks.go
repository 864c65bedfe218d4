package train

// earlyStopping tracks the best validation loss seen so far and signals
// a stop after patience epochs without improvement. The best weight
// snapshot is kept for restoration.
type earlyStopping struct {
	patience int

	best     float64
	bad      int
	snapshot map[string][]float64
	started  bool
}

func newEarlyStopping(patience int) *earlyStopping {
	return &earlyStopping{patience: patience}
}

// observe records an epoch's validation loss and the current weight
// snapshot. It returns true when training should stop.
func (e *earlyStopping) observe(valLoss float64, state map[string][]float64) bool {
	if !e.started || valLoss < e.best {
		e.started = true
		e.best = valLoss
		e.bad = 0
		e.snapshot = state
		return false
	}
	e.bad++
	return e.bad >= e.patience
}

// bestState returns the weights at the best observed epoch, or nil if
// nothing was observed.
func (e *earlyStopping) bestState() map[string][]float64 {
	return e.snapshot
}

// plateauScheduler halves the learning rate after patience epochs
// without validation-loss improvement, never dropping below the floor.
type plateauScheduler struct {
	factor   float64
	patience int
	minLR    float64

	best    float64
	bad     int
	started bool
}

func newPlateauScheduler(factor float64, patience int, minLR float64) *plateauScheduler {
	return &plateauScheduler{factor: factor, patience: patience, minLR: minLR}
}

// observe records an epoch's validation loss and returns the learning
// rate to use next, given the current one.
func (s *plateauScheduler) observe(valLoss, lr float64) float64 {
	if !s.started || valLoss < s.best {
		s.started = true
		s.best = valLoss
		s.bad = 0
		return lr
	}
	s.bad++
	if s.bad < s.patience {
		return lr
	}
	s.bad = 0
	reduced := lr * s.factor
	if reduced < s.minLR {
		reduced = s.minLR
	}
	return reduced
}
