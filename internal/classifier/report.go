package classifier

import (
	"fmt"
	"strings"
)

type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

type Report struct {
	Classes     []ClassMetrics `json:"classes"`
	Accuracy    float64        `json:"accuracy"`
	MacroAvg    ClassMetrics   `json:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg"`
	Total       int            `json:"total"`
}

// Evaluate builds a per-class report for labels 0..len(labels)-1. Undefined
// ratios (no predictions or no support) are reported as 0.
func Evaluate(yTrue, yPred []int, labels []string) (Report, error) {
	if len(yTrue) != len(yPred) {
		return Report{}, fmt.Errorf("%w: %d truths, %d predictions", ErrDimensionMismatch, len(yTrue), len(yPred))
	}

	k := len(labels)
	tp := make([]int, k)
	predicted := make([]int, k)
	support := make([]int, k)
	correct := 0
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t >= k || p < 0 || p >= k {
			return Report{}, fmt.Errorf("%w: row %d (%d, %d)", ErrInvalidLabel, i, t, p)
		}
		support[t]++
		predicted[p]++
		if t == p {
			tp[t]++
			correct++
		}
	}

	r := Report{Total: len(yTrue)}
	if r.Total > 0 {
		r.Accuracy = float64(correct) / float64(r.Total)
	}

	for c := 0; c < k; c++ {
		m := ClassMetrics{
			Label:     labels[c],
			Precision: ratio(tp[c], predicted[c]),
			Recall:    ratio(tp[c], support[c]),
			Support:   support[c],
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.Classes = append(r.Classes, m)

		r.MacroAvg.Precision += m.Precision / float64(k)
		r.MacroAvg.Recall += m.Recall / float64(k)
		r.MacroAvg.F1 += m.F1 / float64(k)
		if r.Total > 0 {
			w := float64(m.Support) / float64(r.Total)
			r.WeightedAvg.Precision += m.Precision * w
			r.WeightedAvg.Recall += m.Recall * w
			r.WeightedAvg.F1 += m.F1 * w
		}
	}
	r.MacroAvg.Label = "macro avg"
	r.MacroAvg.Support = r.Total
	r.WeightedAvg.Label = "weighted avg"
	r.WeightedAvg.Support = r.Total
	return r, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// String renders the report as a fixed-width table.
func (r Report) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len(c.Label))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%*s %9s %9s %9s %9s\n\n", width, "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%*s %9s %9s %9.2f %9d\n", width, "accuracy", "", "", r.Accuracy, r.Total)
	for _, c := range []ClassMetrics{r.MacroAvg, r.WeightedAvg} {
		fmt.Fprintf(&b, "%*s %9.2f %9.2f %9.2f %9d\n", width, c.Label, c.Precision, c.Recall, c.F1, c.Support)
	}
	return b.String()
}
