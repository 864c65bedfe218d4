package export

import "strings"

// The two format generations encode the same tensor identity with
// different path syntax. The authoring side scopes every weight under
// the model name and names bidirectional sub-layers through the inner
// cell ("bidirectional/forward_lstm/lstm_cell/kernel"); the runtime
// loader requests the unscoped, forward-qualified alias
// ("bidirectional/forward_forward_lstm/kernel"). Rewriting is correct
// when the final string is exactly the one the loader will request for
// that shard position.

// Rule is one literal prefix replacement. Rules are evaluated in
// declared order and the first match wins.
type Rule struct {
	Prefix      string
	Replacement string
}

// Rewriter renames collected tensor paths into runtime loader names.
type Rewriter struct {
	prefix string // model-scope prefix including trailing separator
	rules  []Rule
}

// NewRewriter builds a rewriter for the given declared model name and
// ordered replacement rules.
func NewRewriter(modelName string, rules []Rule) *Rewriter {
	prefix := ""
	if modelName != "" {
		prefix = modelName + "/"
	}
	return &Rewriter{prefix: prefix, rules: rules}
}

// Rewrite applies the model-scope prefix strip followed by the first
// matching replacement rule. Names matching neither step are returned
// unchanged.
func (r *Rewriter) Rewrite(name string) string {
	if r.prefix != "" && strings.HasPrefix(name, r.prefix) {
		name = name[len(r.prefix):]
	}
	for _, rule := range r.rules {
		if strings.HasPrefix(name, rule.Prefix) {
			return rule.Replacement + name[len(rule.Prefix):]
		}
	}
	return name
}

// ModelName extracts the declared top-level model name from a
// normalized topology tree, falling back to "sequential" when the tree
// does not declare one.
func ModelName(topology any) string {
	m, ok := topology.(map[string]any)
	if !ok {
		return "sequential"
	}
	if mc, ok := m["model_config"].(map[string]any); ok {
		m = mc
	}
	if cfg, ok := m[keyConfig].(map[string]any); ok {
		if name, ok := cfg["name"].(string); ok && name != "" {
			return name
		}
	}
	return "sequential"
}

// cellTokens maps a recurrent layer class to the sub-module segment its
// cell contributes to authored weight paths.
var cellTokens = map[string]string{
	"LSTM":      "lstm_cell",
	"GRU":       "gru_cell",
	"SimpleRNN": "simple_rnn_cell",
}

// RulesFromTopology derives the recurrent-layer renaming rules from a
// normalized topology tree. Every Bidirectional layer found, in
// encounter order and at any nesting depth, contributes a forward and a
// backward rule built from the composite's own name and the wrapped
// recurrent layer's name. Deriving rules from the topology covers any
// number of composite instances instead of a fixed count.
func RulesFromTopology(topology any) []Rule {
	var rules []Rule
	walkTopology(topology, func(node map[string]any) {
		cn, _ := node[keyClassName].(string)
		if cn != "Bidirectional" {
			return
		}
		cfg, ok := node[keyConfig].(map[string]any)
		if !ok {
			return
		}
		compositeName, _ := cfg["name"].(string)
		inner, ok := cfg["layer"].(map[string]any)
		if !ok || compositeName == "" {
			return
		}
		innerClass, _ := inner[keyClassName].(string)
		innerCfg, _ := inner[keyConfig].(map[string]any)
		innerName, _ := innerCfg["name"].(string)
		if innerClass == "" || innerName == "" {
			return
		}
		cell, ok := cellTokens[innerClass]
		if !ok {
			cell = strings.ToLower(innerClass) + "_cell"
		}
		for _, dir := range []string{"forward", "backward"} {
			rules = append(rules, Rule{
				Prefix:      compositeName + "/" + dir + "_" + innerName + "/" + cell + "/",
				Replacement: compositeName + "/" + dir + "_forward_" + innerName + "/",
			})
		}
	})
	return rules
}

// walkTopology visits every mapping node in the tree, parents before
// children.
func walkTopology(node any, visit func(map[string]any)) {
	switch v := node.(type) {
	case map[string]any:
		visit(v)
		for _, val := range v {
			walkTopology(val, visit)
		}
	case []any:
		for _, item := range v {
			walkTopology(item, visit)
		}
	}
}
