package nn

// GestureClassifier assembles the sequence classifier used for hand
// gesture recognition: two stacked bidirectional LSTM blocks with
// dropout, a relu projection, and a softmax head over the gesture
// vocabulary.
func GestureClassifier(steps, features, numClasses int) *Sequential {
	return NewSequential(
		Input(steps, features),
		Bidirectional(LSTM(128, true)),
		Dropout(0.3),
		Bidirectional(LSTM(64, false)),
		Dropout(0.3),
		Dense(64, ActivationReLU),
		Dropout(0.3),
		Dense(numClasses, ActivationSoftmax),
	)
}
