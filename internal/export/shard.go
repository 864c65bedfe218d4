package export

import (
	"fmt"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/tensor"
)

// Shard is one binary weight file: tensor buffers concatenated in
// collection order with no padding or alignment between them.
type Shard struct {
	Name string
	Data []byte
}

// Pack concatenates the collected buffers into shard files. With
// maxShardBytes <= 0 a single shard holds everything. Otherwise buffers
// are packed greedily and a shard boundary never splits one tensor's
// bytes; a tensor larger than maxShardBytes is an error. Shard names
// follow the group1-shard<K>of<N>.bin convention, listed in the order
// their bytes reconstruct the original stream.
func Pack(buffers []*tensor.Raw, maxShardBytes int) ([]Shard, error) {
	if maxShardBytes <= 0 {
		var total int
		for _, b := range buffers {
			total += b.ByteLen()
		}
		data := make([]byte, 0, total)
		for _, b := range buffers {
			data = append(data, b.Data()...)
		}
		return []Shard{{Name: shardName(1, 1), Data: data}}, nil
	}

	var chunks [][]byte
	var current []byte
	for _, b := range buffers {
		if b.ByteLen() > maxShardBytes {
			return nil, fmt.Errorf("%w: %d bytes > %d", ErrTensorTooLarge, b.ByteLen(), maxShardBytes)
		}
		if len(current) > 0 && len(current)+b.ByteLen() > maxShardBytes {
			chunks = append(chunks, current)
			current = nil
		}
		current = append(current, b.Data()...)
	}
	if len(current) > 0 || len(chunks) == 0 {
		chunks = append(chunks, current)
	}

	shards := make([]Shard, len(chunks))
	for i, data := range chunks {
		shards[i] = Shard{Name: shardName(i+1, len(chunks)), Data: data}
	}
	return shards, nil
}

func shardName(k, n int) string {
	return fmt.Sprintf("group1-shard%dof%d.bin", k, n)
}
