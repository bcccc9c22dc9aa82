package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/railzwaylabs/riskscore/internal/classifier"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	"github.com/railzwaylabs/riskscore/internal/vocabulary"
)

// Bundle is a fitted forest together with the vocabularies it was trained
// with. It is never mutated after construction and may be shared across
// goroutines.
type Bundle struct {
	RunID        string
	TrainedAt    time.Time
	FeatureNames []string
	Forest       *classifier.Forest
	Industry     *vocabulary.Vocabulary
	Region       *vocabulary.Vocabulary
}

// Encode builds the feature vector for one row in FeatureNames order. The
// first failing column decides the error: undefined numeric features are
// reported before unknown categories.
func Encode(row featuredomain.CustomerFeatures, industry, region *vocabulary.Vocabulary) ([]float64, error) {
	numeric := []struct {
		name  string
		value *float64
	}{
		{"late_payment_rate", row.LatePaymentRate},
		{"default_rate", row.DefaultRate},
		{"avg_delay_days", row.AvgDelayDays},
	}

	x := make([]float64, 0, len(FeatureNames))
	for _, col := range numeric {
		if col.value == nil || math.IsNaN(*col.value) {
			return nil, fmt.Errorf("%w: %s", classifier.ErrUndefinedFeature, col.name)
		}
		x = append(x, *col.value)
	}
	x = append(x, row.TotalAmountInvoiced)

	if row.CreditTermDays == nil {
		return nil, fmt.Errorf("%w: credit_term_days", classifier.ErrUndefinedFeature)
	}
	x = append(x, float64(*row.CreditTermDays))

	industryCode, err := industry.Apply(row.Industry)
	if err != nil {
		return nil, err
	}
	regionCode, err := region.Apply(row.Region)
	if err != nil {
		return nil, err
	}
	return append(x, float64(industryCode), float64(regionCode)), nil
}

func (b *Bundle) Encode(row featuredomain.CustomerFeatures) ([]float64, error) {
	return Encode(row, b.Industry, b.Region)
}

func (b *Bundle) Predict(row featuredomain.CustomerFeatures) (Prediction, error) {
	x, err := b.Encode(row)
	if err != nil {
		return Prediction{}, err
	}
	label, prob, err := b.Forest.Predict(x)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{
		CustomerID:      row.CustomerID,
		PredictedLabel:  Labels[label],
		RiskProbability: prob,
	}, nil
}

// Info describes a bundle for the model endpoint.
type Info struct {
	RunID           string             `json:"run_id"`
	TrainedAt       time.Time          `json:"trained_at"`
	FeatureNames    []string           `json:"feature_names"`
	NumTrees        int                `json:"num_trees"`
	Importances     map[string]float64 `json:"feature_importances"`
	IndustryClasses []string           `json:"industry_classes"`
	RegionClasses   []string           `json:"region_classes"`
}

func (b *Bundle) Info() Info {
	importances := make(map[string]float64, len(b.FeatureNames))
	for i, name := range b.FeatureNames {
		if i < len(b.Forest.Importances) {
			importances[name] = b.Forest.Importances[i]
		}
	}
	return Info{
		RunID:           b.RunID,
		TrainedAt:       b.TrainedAt,
		FeatureNames:    append([]string(nil), b.FeatureNames...),
		NumTrees:        len(b.Forest.Trees),
		Importances:     importances,
		IndustryClasses: b.Industry.Classes(),
		RegionClasses:   b.Region.Classes(),
	}
}
