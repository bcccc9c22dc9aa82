package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	modeldomain "github.com/railzwaylabs/riskscore/internal/model/domain"
	"github.com/railzwaylabs/riskscore/internal/observability"
	"github.com/railzwaylabs/riskscore/internal/scoring/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/railzwaylabs/riskscore/internal/scoring")

type Params struct {
	fx.In

	Log      *zap.Logger
	Bundle   *modeldomain.Bundle
	Features featuredomain.Service
	Metrics  *observability.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	bundle   *modeldomain.Bundle
	features featuredomain.Service
	metrics  *observability.Metrics
	validate *validator.Validate
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("scoring.service"),
		bundle:   p.Bundle,
		features: p.Features,
		metrics:  p.Metrics,
		validate: validator.New(),
	}
}

func (s *Service) Predict(ctx context.Context, req domain.PredictRequest) (*domain.PredictResponse, error) {
	ctx, span := tracer.Start(ctx, "scoring.Predict")
	defer span.End()
	start := time.Now()

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	rows, err := s.features.List(ctx, featuredomain.ListFilter{
		CustomerIDs: req.CustomerIDs,
		Industries:  req.Industries,
		Regions:     req.Regions,
	})
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}

	resp, err := Score(s.bundle, rows)
	if err != nil {
		return nil, err
	}
	resp.Excluded = append(resp.Excluded, missing(req.CustomerIDs, rows)...)
	sort.SliceStable(resp.Excluded, func(i, j int) bool {
		return resp.Excluded[i].CustomerID < resp.Excluded[j].CustomerID
	})

	reasons := make(map[string]int)
	for _, e := range resp.Excluded {
		reasons[e.Reason]++
	}
	s.metrics.ObservePredictionBatch(len(resp.Predictions), reasons, time.Since(start).Seconds())

	span.SetAttributes(
		attribute.String("model.run_id", resp.ModelRunID),
		attribute.Int("scoring.predictions", len(resp.Predictions)),
		attribute.Int("scoring.excluded", len(resp.Excluded)),
	)
	if len(resp.Excluded) > 0 {
		s.log.Info("customers excluded from prediction",
			zap.Int("excluded", len(resp.Excluded)),
			zap.Any("reasons", reasons),
		)
	}
	return resp, nil
}

// missing reports requested customer IDs that did not survive the filter.
func missing(requested []string, rows []featuredomain.CustomerFeatures) []domain.Excluded {
	if len(requested) == 0 {
		return nil
	}
	found := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		found[row.CustomerID] = struct{}{}
	}

	var out []domain.Excluded
	seen := make(map[string]struct{}, len(requested))
	for _, id := range requested {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := found[id]; !ok {
			out = append(out, domain.Excluded{
				CustomerID: id,
				Reason:     domain.ReasonNotFound,
				Detail:     "customer not in feature table or outside the industry/region filter",
			})
		}
	}
	return out
}
