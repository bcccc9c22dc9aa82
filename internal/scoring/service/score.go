package service

import (
	"errors"
	"sort"

	"github.com/railzwaylabs/riskscore/internal/classifier"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	modeldomain "github.com/railzwaylabs/riskscore/internal/model/domain"
	"github.com/railzwaylabs/riskscore/internal/scoring/domain"
	"github.com/railzwaylabs/riskscore/internal/vocabulary"
)

// Score predicts every row it can. Rows that cannot be encoded are reported
// in Excluded and never stop the batch. Predictions are ordered by
// probability descending, then customer ID.
func Score(bundle *modeldomain.Bundle, rows []featuredomain.CustomerFeatures) (*domain.PredictResponse, error) {
	resp := &domain.PredictResponse{
		ModelRunID:  bundle.RunID,
		Predictions: make([]modeldomain.Prediction, 0, len(rows)),
		Excluded:    []domain.Excluded{},
		Summary:     summarize(rows),
	}

	for _, row := range rows {
		p, err := bundle.Predict(row)
		switch {
		case err == nil:
			resp.Predictions = append(resp.Predictions, p)
		case errors.Is(err, classifier.ErrUndefinedFeature):
			resp.Excluded = append(resp.Excluded, domain.Excluded{
				CustomerID: row.CustomerID,
				Reason:     domain.ReasonUndefinedFeature,
				Detail:     err.Error(),
			})
		case errors.Is(err, vocabulary.ErrUnknownCategory):
			resp.Excluded = append(resp.Excluded, domain.Excluded{
				CustomerID: row.CustomerID,
				Reason:     domain.ReasonUnknownCategory,
				Detail:     err.Error(),
			})
		default:
			return nil, err
		}
	}

	sort.SliceStable(resp.Predictions, func(i, j int) bool {
		a, b := resp.Predictions[i], resp.Predictions[j]
		if a.RiskProbability != b.RiskProbability {
			return a.RiskProbability > b.RiskProbability
		}
		return a.CustomerID < b.CustomerID
	})
	return resp, nil
}

func summarize(rows []featuredomain.CustomerFeatures) domain.Summary {
	ids := make(map[string]struct{}, len(rows))
	var lateSum, delaySum float64
	var lateN, delayN int
	for _, row := range rows {
		ids[row.CustomerID] = struct{}{}
		if row.LatePaymentRate != nil {
			lateSum += *row.LatePaymentRate
			lateN++
		}
		if row.AvgDelayDays != nil {
			delaySum += *row.AvgDelayDays
			delayN++
		}
	}

	s := domain.Summary{TotalCustomers: len(ids)}
	if lateN > 0 {
		v := lateSum / float64(lateN)
		s.MeanLatePaymentRate = &v
	}
	if delayN > 0 {
		v := delaySum / float64(delayN)
		s.MeanDelayDays = &v
	}
	return s
}
