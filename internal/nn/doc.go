// Package nn implements the sequence classifier trained on hand
// landmark sequences: a small set of layer kinds (input, dense,
// dropout, LSTM and the bidirectional wrapper), a Sequential container
// with keras-style auto-naming, and manual forward/backward passes over
// gonum matrices.
//
// Layer configs serialize in the authoring schema the wider tooling
// emits; the export pipeline is responsible for normalizing that schema
// for the browser runtime.
package nn
