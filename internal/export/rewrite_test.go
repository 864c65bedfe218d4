package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lstmRules(composite, inner string) []Rule {
	return []Rule{
		{composite + "/forward_" + inner + "/lstm_cell/", composite + "/forward_forward_" + inner + "/"},
		{composite + "/backward_" + inner + "/lstm_cell/", composite + "/backward_forward_" + inner + "/"},
	}
}

func TestRewrite_BidirectionalLSTMKernel(t *testing.T) {
	r := NewRewriter("sequential", lstmRules("bidirectional", "lstm"))
	got := r.Rewrite("sequential/bidirectional/forward_lstm/lstm_cell/kernel")
	assert.Equal(t, "bidirectional/forward_forward_lstm/kernel", got)
}

func TestRewrite_PrefixStripOnly(t *testing.T) {
	r := NewRewriter("sequential", nil)
	assert.Equal(t, "dense/kernel", r.Rewrite("sequential/dense/kernel"))
}

func TestRewrite_NoPrefixLeftUnchanged(t *testing.T) {
	r := NewRewriter("sequential", nil)
	assert.Equal(t, "model_1/dense/kernel", r.Rewrite("model_1/dense/kernel"))
}

func TestRewrite_FirstMatchingRuleWins(t *testing.T) {
	rules := []Rule{
		{"a/", "first/"},
		{"a/", "second/"},
	}
	r := NewRewriter("", rules)
	assert.Equal(t, "first/x", r.Rewrite("a/x"))
}

func TestRewrite_SecondCompositeInstance(t *testing.T) {
	rules := append(lstmRules("bidirectional", "lstm"), lstmRules("bidirectional_1", "lstm_1")...)
	r := NewRewriter("sequential", rules)

	tests := []struct {
		in, want string
	}{
		{
			"bidirectional_1/forward_lstm_1/lstm_cell/recurrent_kernel",
			"bidirectional_1/forward_forward_lstm_1/recurrent_kernel",
		},
		{
			"bidirectional_1/backward_lstm_1/lstm_cell/bias",
			"bidirectional_1/backward_forward_lstm_1/bias",
		},
		{
			// Dense weights match no rule and only lose the model scope.
			"sequential/dense/bias",
			"dense/bias",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Rewrite(tt.in))
	}
}

func TestModelName(t *testing.T) {
	tests := []struct {
		name     string
		topology any
		want     string
	}{
		{
			"direct config",
			map[string]any{"class_name": "Sequential", "config": map[string]any{"name": "gesture_net"}},
			"gesture_net",
		},
		{
			"nested model_config",
			map[string]any{"model_config": map[string]any{"config": map[string]any{"name": "sequential_2"}}},
			"sequential_2",
		},
		{"missing name", map[string]any{"config": map[string]any{}}, "sequential"},
		{"not a mapping", "float32", "sequential"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModelName(tt.topology))
		})
	}
}

func TestRulesFromTopology_GeneratesPerCompositeInstance(t *testing.T) {
	topology := map[string]any{
		"class_name": "Sequential",
		"config": map[string]any{
			"name": "sequential",
			"layers": []any{
				map[string]any{
					"class_name": "Bidirectional",
					"config": map[string]any{
						"name":  "bidirectional",
						"layer": map[string]any{"class_name": "LSTM", "config": map[string]any{"name": "lstm"}},
					},
				},
				map[string]any{"class_name": "Dropout", "config": map[string]any{"name": "dropout"}},
				map[string]any{
					"class_name": "Bidirectional",
					"config": map[string]any{
						"name":  "bidirectional_1",
						"layer": map[string]any{"class_name": "LSTM", "config": map[string]any{"name": "lstm_1"}},
					},
				},
			},
		},
	}

	rules := RulesFromTopology(topology)
	want := []Rule{
		{"bidirectional/forward_lstm/lstm_cell/", "bidirectional/forward_forward_lstm/"},
		{"bidirectional/backward_lstm/lstm_cell/", "bidirectional/backward_forward_lstm/"},
		{"bidirectional_1/forward_lstm_1/lstm_cell/", "bidirectional_1/forward_forward_lstm_1/"},
		{"bidirectional_1/backward_lstm_1/lstm_cell/", "bidirectional_1/backward_forward_lstm_1/"},
	}
	assert.Equal(t, want, rules)
}

func TestRulesFromTopology_GRUCellToken(t *testing.T) {
	topology := map[string]any{
		"class_name": "Bidirectional",
		"config": map[string]any{
			"name":  "bidirectional",
			"layer": map[string]any{"class_name": "GRU", "config": map[string]any{"name": "gru"}},
		},
	}
	rules := RulesFromTopology(topology)
	assert.Equal(t, "bidirectional/forward_gru/gru_cell/", rules[0].Prefix)
	assert.Equal(t, "bidirectional/forward_forward_gru/", rules[0].Replacement)
}
