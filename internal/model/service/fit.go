package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/railzwaylabs/riskscore/internal/classifier"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	"github.com/railzwaylabs/riskscore/internal/model/domain"
	"github.com/railzwaylabs/riskscore/internal/vocabulary"
)

const (
	ExcludedMissingLabel     = "missing_label"
	ExcludedUndefinedFeature = "undefined_feature"
)

type FitConfig struct {
	RunID     string
	TrainedAt time.Time
	TestRatio float64
	Seed      uint64
	NumTrees  int
	MaxDepth  int
}

type FitResult struct {
	Bundle       *domain.Bundle
	Report       classifier.Report
	TrainSamples int
	TestSamples  int
	Excluded     map[string]int
}

// Fit trains a bundle on the feature table. Vocabularies are fit on every
// row, labeled or not; only complete labeled rows become samples.
func Fit(rows []featuredomain.CustomerFeatures, cfg FitConfig) (*FitResult, error) {
	if len(rows) == 0 {
		return nil, domain.ErrNoFeatures
	}

	industries := make([]string, 0, len(rows))
	regions := make([]string, 0, len(rows))
	for _, row := range rows {
		industries = append(industries, row.Industry)
		regions = append(regions, row.Region)
	}
	industry, err := vocabulary.Fit("industry", industries)
	if err != nil {
		return nil, err
	}
	region, err := vocabulary.Fit("region", regions)
	if err != nil {
		return nil, err
	}

	excluded := map[string]int{}
	var (
		x [][]float64
		y []int
	)
	for _, row := range rows {
		if row.RiskCategory == nil || *row.RiskCategory == "" {
			excluded[ExcludedMissingLabel]++
			continue
		}
		vec, err := domain.Encode(row, industry, region)
		if err != nil {
			if errors.Is(err, classifier.ErrUndefinedFeature) {
				excluded[ExcludedUndefinedFeature]++
				continue
			}
			return nil, fmt.Errorf("encode %s: %w", row.CustomerID, err)
		}
		x = append(x, vec)
		y = append(y, labelOf(*row.RiskCategory))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: %d usable rows", domain.ErrInsufficientTrainingData, len(x))
	}

	trainIdx, testIdx, err := classifier.TrainTestSplit(len(x), cfg.TestRatio, cfg.Seed)
	if err != nil {
		return nil, err
	}
	xTrain, yTrain := pick(x, y, trainIdx)
	xTest, yTest := pick(x, y, testIdx)

	forest, err := classifier.Fit(xTrain, yTrain, classifier.Config{
		NumTrees: cfg.NumTrees,
		MaxDepth: cfg.MaxDepth,
		Seed:     cfg.Seed,
	})
	if err != nil {
		return nil, err
	}

	yPred := make([]int, len(xTest))
	for i, vec := range xTest {
		label, _, err := forest.Predict(vec)
		if err != nil {
			return nil, err
		}
		yPred[i] = label
	}
	report, err := classifier.Evaluate(yTest, yPred, domain.Labels)
	if err != nil {
		return nil, err
	}

	return &FitResult{
		Bundle: &domain.Bundle{
			RunID:        cfg.RunID,
			TrainedAt:    cfg.TrainedAt.UTC(),
			FeatureNames: append([]string(nil), domain.FeatureNames...),
			Forest:       forest,
			Industry:     industry,
			Region:       region,
		},
		Report:       report,
		TrainSamples: len(xTrain),
		TestSamples:  len(xTest),
		Excluded:     excluded,
	}, nil
}

func labelOf(category string) int {
	if category == domain.HighRiskCategory {
		return 1
	}
	return 0
}

func pick(x [][]float64, y []int, idx []int) ([][]float64, []int) {
	xs := make([][]float64, len(idx))
	ys := make([]int, len(idx))
	for i, j := range idx {
		xs[i] = x[j]
		ys[i] = y[j]
	}
	return xs, ys
}
