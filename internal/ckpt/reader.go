package ckpt

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/tensor"
)

// Read loads and validates a checkpoint: magic bytes, version, header
// placement, tensor offsets and the data-section checksum.
func Read(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()

	fixed := make([]byte, fixedHeaderSize)
	if _, err := io.ReadFull(f, fixed); err != nil {
		return nil, fmt.Errorf("read fixed header: %w", err)
	}
	if string(fixed[0:4]) != MagicBytes {
		return nil, ErrInvalidMagic
	}
	if v := binary.LittleEndian.Uint32(fixed[4:8]); v != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, v, FormatVersion)
	}

	headerSize := binary.LittleEndian.Uint64(fixed[16:24])
	dataSize := binary.LittleEndian.Uint64(fixed[24:32])
	if headerSize > maxHeaderSize {
		return nil, ErrHeaderTooLarge
	}
	var checksum [checksumSize]byte
	copy(checksum[:], fixed[checksumOffset:checksumOffset+checksumSize])

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(f, headerJSON); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if err := header.validate(int64(dataSize)); err != nil {
		return nil, err
	}

	pos := int64(fixedHeaderSize) + int64(headerSize)
	if pad := (dataAlignment - pos%dataAlignment) % dataAlignment; pad > 0 {
		if _, err := io.CopyN(io.Discard, f, pad); err != nil {
			return nil, fmt.Errorf("skip padding: %w", err)
		}
	}

	data := make([]byte, dataSize)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("read tensor data: %w", err)
	}
	if got := sha256.Sum256(data); !bytes.Equal(got[:], checksum[:]) {
		return nil, ErrChecksumMismatch
	}

	c := &Checkpoint{Header: header, Tensors: make(map[string]*tensor.Raw, len(header.Tensors))}
	for _, meta := range header.Tensors {
		dtype, ok := tensor.ParseDataType(meta.DType)
		if !ok {
			return nil, fmt.Errorf("tensor %q: unsupported dtype %q", meta.Name, meta.DType)
		}
		buf := make([]byte, meta.Size)
		copy(buf, data[meta.Offset:meta.Offset+meta.Size])
		raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, buf)
		if err != nil {
			return nil, fmt.Errorf("tensor %q: %w", meta.Name, err)
		}
		c.Tensors[meta.Name] = raw
	}
	return c, nil
}
