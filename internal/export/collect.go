package export

import (
	"fmt"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/tensor"
)

// NamedTensor is one weight tensor as exposed by a model layer.
type NamedTensor struct {
	Path   string      // Logical path within the layer (e.g. "sequential/dense/kernel")
	Tensor *tensor.Raw // Numeric contents, any supported precision
}

// LayerWeights is the collector's view of one model layer: its name, a
// kind tag distinguishing composite (bidirectional-style) layers from
// simple ones, and its weight tensors in declaration order.
type LayerWeights struct {
	Name      string
	Composite bool
	Weights   []NamedTensor
}

// Collection is the ordered result of walking a model's weights. Specs
// and Buffers are parallel slices; their shared order becomes the
// implicit byte-offset addressing of the shard files, so nothing
// downstream may reorder them.
type Collection struct {
	Specs   []TensorSpec
	Buffers []*tensor.Raw
}

// TotalBytes returns the summed byte length of all collected buffers.
func (c *Collection) TotalBytes() int64 {
	var n int64
	for _, b := range c.Buffers {
		n += int64(b.ByteLen())
	}
	return n
}

// Collect walks layers in declaration order and, within each layer,
// weights in declaration order, producing a float32 spec/buffer pair per
// tensor. Composite layers contribute their own name as a path prefix
// for every inner weight; simple layers contribute weight paths
// unmodified. Source tensors of any precision are narrowed to float32.
func Collect(layers []LayerWeights) (*Collection, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}

	col := &Collection{}
	seen := make(map[string]struct{})

	for _, layer := range layers {
		for _, w := range layer.Weights {
			name := w.Path
			if layer.Composite {
				name = layer.Name + "/" + w.Path
			}
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateTensorName, name)
			}
			seen[name] = struct{}{}

			buf, err := w.Tensor.AsFloat32()
			if err != nil {
				return nil, fmt.Errorf("convert tensor %q: %w", name, err)
			}

			shape := buf.Shape()
			want := shape.NumElements() * 4
			if buf.ByteLen() != want {
				return nil, &ShapeMismatchError{
					Name:    name,
					Shape:   []int(shape),
					ByteLen: buf.ByteLen(),
					WantLen: want,
				}
			}

			col.Specs = append(col.Specs, TensorSpec{
				Name:  name,
				Shape: []int(shape.Clone()),
				DType: "float32",
			})
			col.Buffers = append(col.Buffers, buf)
		}
	}

	return col, nil
}
