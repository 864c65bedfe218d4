package export

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/tensor"
)

func TestPack_SingleShardConcatenation(t *testing.T) {
	a := f32(t, tensor.Shape{2}, []float32{1, 2})
	b := f32(t, tensor.Shape{3}, []float32{3, 4, 5})

	shards, err := Pack([]*tensor.Raw{a, b}, 0)
	require.NoError(t, err)
	require.Len(t, shards, 1)

	assert.Equal(t, "group1-shard1of1.bin", shards[0].Name)
	assert.Equal(t, 20, len(shards[0].Data))
	assert.Equal(t, append(append([]byte{}, a.Data()...), b.Data()...), shards[0].Data)
}

func TestPack_MultiShardNeverSplitsTensor(t *testing.T) {
	// Three 8-byte tensors with a 12-byte cap: each shard can hold only
	// one whole tensor.
	bufs := []*tensor.Raw{
		f32(t, tensor.Shape{2}, []float32{1, 2}),
		f32(t, tensor.Shape{2}, []float32{3, 4}),
		f32(t, tensor.Shape{2}, []float32{5, 6}),
	}

	shards, err := Pack(bufs, 12)
	require.NoError(t, err)
	require.Len(t, shards, 3)

	assert.Equal(t, "group1-shard1of3.bin", shards[0].Name)
	assert.Equal(t, "group1-shard2of3.bin", shards[1].Name)
	assert.Equal(t, "group1-shard3of3.bin", shards[2].Name)

	var joined []byte
	for _, s := range shards {
		assert.LessOrEqual(t, len(s.Data), 12)
		joined = append(joined, s.Data...)
	}
	var want []byte
	for _, b := range bufs {
		want = append(want, b.Data()...)
	}
	assert.Equal(t, want, joined)
}

func TestPack_TensorLargerThanCapFails(t *testing.T) {
	big := f32(t, tensor.Shape{4}, []float32{1, 2, 3, 4})
	_, err := Pack([]*tensor.Raw{big}, 8)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTensorTooLarge))
}

func TestPack_NoBuffersStillOneShard(t *testing.T) {
	shards, err := Pack(nil, 0)
	require.NoError(t, err)
	require.Len(t, shards, 1)
	assert.Empty(t, shards[0].Data)
}
