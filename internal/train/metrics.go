package train

import (
	"fmt"
	"strings"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/dataset"
	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/nn"
)

// ClassMetrics holds per-class evaluation numbers.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a per-class breakdown of test-set performance.
type Report struct {
	Classes  []ClassMetrics
	Accuracy float64
}

// Classify evaluates the model on a dataset and builds a per-class
// precision/recall/F1 report.
func Classify(model *nn.Sequential, ds *dataset.Dataset) *Report {
	probs := model.Predict(ds.X)
	pred := nn.Argmax(probs)

	n := len(ds.Labels)
	tp := make([]int, n)
	fp := make([]int, n)
	fn := make([]int, n)
	support := make([]int, n)

	correct := 0
	for i, want := range ds.Y {
		support[want]++
		got := pred[i]
		if got == want {
			tp[want]++
			correct++
		} else {
			fp[got]++
			fn[want]++
		}
	}

	rep := &Report{Accuracy: float64(correct) / float64(len(ds.Y))}
	for c, label := range ds.Labels {
		m := ClassMetrics{Label: label, Support: support[c]}
		if tp[c]+fp[c] > 0 {
			m.Precision = float64(tp[c]) / float64(tp[c]+fp[c])
		}
		if tp[c]+fn[c] > 0 {
			m.Recall = float64(tp[c]) / float64(tp[c]+fn[c])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		rep.Classes = append(rep.Classes, m)
	}
	return rep
}

// String renders the report as an aligned text table.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %9s %9s %9s %9s\n", "class", "precision", "recall", "f1", "support")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%-16s %9.3f %9.3f %9.3f %9d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(&b, "%-16s %39.3f\n", "accuracy", r.Accuracy)
	return b.String()
}
