package ckpt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/tensor"
)

func testCheckpoint(t *testing.T) *Checkpoint {
	t.Helper()
	kernel, err := tensor.FromFloat32(tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	bias, err := tensor.FromFloat32(tensor.Shape{3}, []float32{0.1, 0.2, 0.3})
	require.NoError(t, err)

	return &Checkpoint{
		Header: Header{
			SequenceLength: 30,
			Features:       126,
			NumClasses:     3,
			Labels:         []string{"hello", "iloveyou", "thanks"},
		},
		Tensors: map[string]*tensor.Raw{
			"sequential/dense/kernel": kernel,
			"sequential/dense/bias":   bias,
		},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	require.NoError(t, Write(path, testCheckpoint(t)))

	got, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, got.Header.FormatVersion)
	assert.Equal(t, 30, got.Header.SequenceLength)
	assert.Equal(t, []string{"hello", "iloveyou", "thanks"}, got.Header.Labels)
	require.Len(t, got.Tensors, 2)

	kernel := got.Tensors["sequential/dense/kernel"]
	require.NotNil(t, kernel)
	assert.Equal(t, []int{2, 3}, []int(kernel.Shape()))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, kernel.Float32s())
}

func TestWrite_Deterministic(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.ckpt")
	b := filepath.Join(dir, "b.ckpt")
	require.NoError(t, Write(a, testCheckpoint(t)))
	require.NoError(t, Write(b, testCheckpoint(t)))

	// Data sections are byte-identical; only CreatedAt in the JSON header
	// may differ, so compare the tails.
	ba, err := os.ReadFile(a)
	require.NoError(t, err)
	bb, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, ba[len(ba)-36:], bb[len(bb)-36:])
}

func TestRead_RejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	require.NoError(t, Write(path, testCheckpoint(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	copy(data[0:4], "NOPE")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Read(path)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestRead_DetectsCorruptedData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	require.NoError(t, Write(path, testCheckpoint(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Read(path)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestHeader_ValidateOffsets(t *testing.T) {
	h := Header{Tensors: []TensorMeta{
		{Name: "a", Offset: 0, Size: 8},
		{Name: "b", Offset: 8, Size: 4},
	}}
	assert.NoError(t, h.validate(12))

	h.Tensors[1].Offset = 10
	var offErr *OffsetError
	assert.ErrorAs(t, h.validate(12), &offErr)
	assert.Equal(t, "b", offErr.Name)

	h.Tensors[1].Offset = 8
	assert.Error(t, h.validate(16)) // uncovered tail
}

func TestFromStateDict_HalfPrecisionRoundTrip(t *testing.T) {
	state := map[string][]float64{
		"w": {0.5, -1.25, 2.0, 0.0},
	}
	shapes := map[string][]int{"w": {2, 2}}

	c, err := FromStateDict(state, shapes, tensor.Float16, Header{NumClasses: 2})
	require.NoError(t, err)
	assert.Equal(t, tensor.Float16, c.Tensors["w"].DType())
	assert.Equal(t, 8, c.Tensors["w"].ByteLen())

	path := filepath.Join(t.TempDir(), "half.ckpt")
	require.NoError(t, Write(path, c))
	got, err := Read(path)
	require.NoError(t, err)

	// These values are exactly representable in half precision.
	assert.Equal(t, state["w"], got.StateDict()["w"])
}

func TestFromStateDict_MissingShape(t *testing.T) {
	_, err := FromStateDict(map[string][]float64{"w": {1}}, nil, tensor.Float32, Header{})
	assert.Error(t, err)
}
