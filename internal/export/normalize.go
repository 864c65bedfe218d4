package export

// Topology trees arrive as the JSON-like values the training side
// serializes (maps, slices, strings, numbers, bools, nil). The newer
// authoring schema decorates them with fields the browser runtime does
// not understand; Normalize rewrites a tree into the older schema the
// runtime expects. The function is pure and idempotent: normalizing an
// already-normalized tree returns an equal tree.

// Keys the newer authoring schema emits that the runtime rejects.
const (
	keyBatchShape      = "batch_shape"
	keyBatchInputShape = "batch_input_shape"
	keyClassName       = "class_name"
	keyConfig          = "config"
	keyModule          = "module"
	keyRegisteredName  = "registered_name"

	classDTypePolicy = "DTypePolicy"
	defaultDType     = "float32"
)

// droppedKeys are meaningful only to the newer authoring schema and are
// removed wherever they occur, at any depth.
var droppedKeys = map[string]struct{}{
	"optional":             {},
	"build_config":         {},
	"quantization_config":  {},
	"zero_output_for_mask": {},
}

// Normalize recursively rewrites a topology tree, bottom-up, into the
// schema the runtime loader understands:
//
//   - "batch_shape" keys are renamed to "batch_input_shape", values kept.
//   - DTypePolicy wrapper objects collapse to the bare element type name
//     from their nested config ("float32" when absent).
//   - Object references carrying module, class_name and registered_name
//     collapse to {class_name, config} with the config normalized.
//   - Keys on the disallow-list are dropped entirely.
//   - Everything else passes through unchanged.
//
// A collapse rule's own replacement is not re-normalized, so a single
// pass suffices and the rewrite cannot loop.
func Normalize(node any) any {
	switch v := node.(type) {
	case map[string]any:
		// Data-type policy wrappers collapse to a bare type name.
		// Checked before the object-reference rule: policy objects
		// also carry module/registered_name metadata.
		if cn, ok := v[keyClassName].(string); ok && cn == classDTypePolicy {
			if cfg, ok := v[keyConfig]; ok {
				if m, ok := cfg.(map[string]any); ok {
					if name, ok := m["name"].(string); ok {
						return name
					}
				}
				return defaultDType
			}
		}

		// Newer object-reference convention collapses to the older
		// {class_name, config} pair; module and registered-name
		// metadata are discarded.
		_, hasModule := v[keyModule]
		_, hasClass := v[keyClassName]
		_, hasReg := v[keyRegisteredName]
		if hasModule && hasClass && hasReg {
			cfg := any(map[string]any{})
			if c, ok := v[keyConfig]; ok {
				cfg = Normalize(c)
			}
			return map[string]any{
				keyClassName: v[keyClassName],
				keyConfig:    cfg,
			}
		}

		out := make(map[string]any, len(v))
		for k, val := range v {
			if _, drop := droppedKeys[k]; drop {
				continue
			}
			if k == keyBatchShape {
				k = keyBatchInputShape
			}
			out[k] = Normalize(val)
		}
		return out

	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Normalize(item)
		}
		return out

	default:
		// Scalars and unknown shapes pass through unchanged.
		return v
	}
}
