// Copyright 2025 The SignAssist Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package export provides the public API for writing browser-loadable
// layered-model artifacts: a model.json document holding the normalized
// model topology and a positional weights manifest, next to one or more
// binary weight shards.
//
// Example:
//
//	exp := export.Exporter{}
//	doc, err := exp.Export("dist/model", layers, topology)
//	if err != nil {
//		return err
//	}
//	report, err := export.Verify("dist/model")
package export

import (
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/export"
)

// Format and filename constants of the artifact layout.
const (
	FormatLayersModel = export.FormatLayersModel
	DocumentName      = export.DocumentName
)

// Core pipeline types.
type (
	// Exporter assembles and writes layered-model artifacts.
	Exporter = export.Exporter
	// Document is the persisted model.json content.
	Document = export.Document
	// TensorSpec describes one weight tensor in the manifest.
	TensorSpec = export.TensorSpec
	// WeightsManifestGroup maps ordered tensors onto ordered shards.
	WeightsManifestGroup = export.WeightsManifestGroup
	// LayerWeights is the collector's view of one model layer.
	LayerWeights = export.LayerWeights
	// NamedTensor is one weight tensor as exposed by a layer.
	NamedTensor = export.NamedTensor
	// Report summarizes a verified artifact directory.
	Report = export.Report
)

// Verify checks an exported artifact directory for self-consistency.
func Verify(dir string) (*Report, error) {
	return export.Verify(dir)
}

// ReadDocument loads the export document from an artifact directory.
func ReadDocument(dir string) (*Document, error) {
	return export.ReadDocument(dir)
}
