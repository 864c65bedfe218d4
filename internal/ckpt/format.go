// Package ckpt reads and writes the native checkpoint format: a
// 64-byte fixed header carrying magic bytes, version, sizes and a
// SHA-256 checksum of the data section, followed by a JSON header with
// per-tensor metadata and the concatenated little-endian tensor data.
//
// Fixed header layout:
//
//	0x00-0x03  magic bytes "SGNA"
//	0x04-0x07  format version (uint32 LE)
//	0x08-0x0F  reserved
//	0x10-0x17  JSON header size (uint64 LE)
//	0x18-0x1F  data section size (uint64 LE)
//	0x20-0x3F  SHA-256 checksum of the data section
//
// The data section starts at the first 64-byte boundary after the JSON
// header.
package ckpt

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MagicBytes identifies a checkpoint file.
	MagicBytes = "SGNA"
	// FormatVersion is the current checkpoint format version.
	FormatVersion = 1

	fixedHeaderSize = 64
	dataAlignment   = 64
	checksumOffset  = 0x20
	checksumSize    = 32
	maxHeaderSize   = 100 << 20
)

// Checkpoint format errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrHeaderTooLarge     = errors.New("header size exceeds limit")
	ErrChecksumMismatch   = errors.New("data checksum mismatch")
)

// OffsetError reports a tensor whose declared placement does not fit
// the data section.
type OffsetError struct {
	Name   string
	Offset int64
	Size   int64
	Data   int64 // data section size
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("tensor %q: offset %d size %d outside data section of %d bytes",
		e.Name, e.Offset, e.Size, e.Data)
}

// TensorMeta locates one tensor inside the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"`
	Size   int64  `json:"size"`
}

// Header is the checkpoint's JSON header. The model fields carry what
// a loader needs to rebuild the classifier before restoring weights.
type Header struct {
	FormatVersion  int          `json:"format_version"`
	CreatedAt      time.Time    `json:"created_at"`
	SequenceLength int          `json:"sequence_length"`
	Features       int          `json:"features"`
	NumClasses     int          `json:"num_classes"`
	Labels         []string     `json:"labels"`
	Tensors        []TensorMeta `json:"tensors"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// validate checks that tensor placements tile the data section without
// gaps, overlaps or out-of-range reads.
func (h *Header) validate(dataSize int64) error {
	var expect int64
	for _, meta := range h.Tensors {
		if meta.Offset != expect || meta.Size < 0 || meta.Offset+meta.Size > dataSize {
			return &OffsetError{Name: meta.Name, Offset: meta.Offset, Size: meta.Size, Data: dataSize}
		}
		expect += meta.Size
	}
	if expect != dataSize {
		return fmt.Errorf("tensors cover %d of %d data bytes", expect, dataSize)
	}
	return nil
}
