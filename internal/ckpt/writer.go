package ckpt

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/tensor"
)

// Checkpoint is an in-memory checkpoint: the header's model fields plus
// the named weight tensors.
type Checkpoint struct {
	Header  Header
	Tensors map[string]*tensor.Raw
}

// Write serializes the checkpoint to path. Tensors are laid out in
// sorted name order so the same weights always produce the same bytes.
// The file is written to a temporary sibling and renamed into place so
// a failed write never leaves a truncated checkpoint behind.
func Write(path string, c *Checkpoint) error {
	header := c.Header
	header.FormatVersion = FormatVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}

	names := make([]string, 0, len(c.Tensors))
	for name := range c.Tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	header.Tensors = header.Tensors[:0]
	var data []byte
	for _, name := range names {
		raw := c.Tensors[name]
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  raw.DType().String(),
			Shape:  []int(raw.Shape()),
			Offset: int64(len(data)),
			Size:   int64(raw.ByteLen()),
		})
		data = append(data, raw.Data()...)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshal header: %w", err)
	}

	checksum := sha256.Sum256(data)

	fixed := make([]byte, fixedHeaderSize)
	copy(fixed[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixed[4:8], FormatVersion)
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	copy(fixed[checksumOffset:checksumOffset+checksumSize], checksum[:])

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}

	err = func() error {
		if _, err := f.Write(fixed); err != nil {
			return fmt.Errorf("write fixed header: %w", err)
		}
		if _, err := f.Write(headerJSON); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		pos := int64(fixedHeaderSize + len(headerJSON))
		if pad := (dataAlignment - pos%dataAlignment) % dataAlignment; pad > 0 {
			if _, err := f.Write(make([]byte, pad)); err != nil {
				return fmt.Errorf("write padding: %w", err)
			}
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("write tensor data: %w", err)
		}
		return f.Sync()
	}()
	if err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize checkpoint: %w", err)
	}
	return nil
}

// FromStateDict builds a checkpoint from a path-keyed weight snapshot,
// storing every tensor in the requested precision.
func FromStateDict(state map[string][]float64, shapes map[string][]int, dtype tensor.DataType, header Header) (*Checkpoint, error) {
	tensors := make(map[string]*tensor.Raw, len(state))
	for name, values := range state {
		shape, ok := shapes[name]
		if !ok {
			return nil, fmt.Errorf("no shape recorded for weight %q", name)
		}
		raw, err := tensor.FromFloat64(tensor.Shape(shape), values)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", name, err)
		}
		if raw, err = raw.Convert(dtype); err != nil {
			return nil, fmt.Errorf("weight %q: %w", name, err)
		}
		tensors[name] = raw
	}
	return &Checkpoint{Header: header, Tensors: tensors}, nil
}

// StateDict converts the checkpoint's tensors back into a path-keyed
// float64 snapshot.
func (c *Checkpoint) StateDict() map[string][]float64 {
	out := make(map[string][]float64, len(c.Tensors))
	for name, raw := range c.Tensors {
		values := raw.Float32s()
		wide := make([]float64, len(values))
		for i, v := range values {
			wide[i] = float64(v)
		}
		out[name] = wide
	}
	return out
}
