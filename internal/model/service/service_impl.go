package service

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/railzwaylabs/riskscore/internal/clock"
	"github.com/railzwaylabs/riskscore/internal/config"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	"github.com/railzwaylabs/riskscore/internal/model/artifact"
	"github.com/railzwaylabs/riskscore/internal/model/domain"
	"github.com/railzwaylabs/riskscore/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/railzwaylabs/riskscore/internal/model")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Cfg      config.Config
	Clock    clock.Clock
	GenID    *snowflake.Node
	Repo     domain.Repository
	Features featuredomain.Service
	Metrics  *observability.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	genID    *snowflake.Node
	repo     domain.Repository
	features featuredomain.Service
	metrics  *observability.Metrics

	artifactDir string
	training    config.TrainingConfig
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("model.service"),
		clock:       p.Clock,
		genID:       p.GenID,
		repo:        p.Repo,
		features:    p.Features,
		metrics:     p.Metrics,
		artifactDir: p.Cfg.Artifact.Dir,
		training:    p.Cfg.Training,
	}
}

func (s *Service) Train(ctx context.Context) (*domain.TrainResult, error) {
	ctx, span := tracer.Start(ctx, "model.Train")
	defer span.End()

	rows, err := s.features.List(ctx, featuredomain.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("load feature table: %w", err)
	}

	now := s.clock.Now(ctx)
	runID := ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()

	fit, err := Fit(rows, FitConfig{
		RunID:     runID,
		TrainedAt: now,
		TestRatio: s.training.TestRatio,
		Seed:      s.training.Seed,
		NumTrees:  s.training.NumTrees,
		MaxDepth:  s.training.MaxDepth,
	})
	if err != nil {
		return nil, err
	}

	dir, checksum, err := artifact.Save(s.artifactDir, fit.Bundle)
	if err != nil {
		return nil, fmt.Errorf("save bundle: %w", err)
	}

	excludedTotal := 0
	for _, n := range fit.Excluded {
		excludedTotal += n
	}
	run := &domain.Run{
		ID:           s.genID.Generate(),
		RunID:        runID,
		ArtifactPath: dir,
		Checksum:     checksum,
		TrainSamples: fit.TrainSamples,
		TestSamples:  fit.TestSamples,
		ExcludedRows: excludedTotal,
		Metadata: datatypes.JSONMap{
			"seed":          s.training.Seed,
			"num_trees":     len(fit.Bundle.Forest.Trees),
			"max_depth":     s.training.MaxDepth,
			"test_ratio":    s.training.TestRatio,
			"feature_names": fit.Bundle.FeatureNames,
			"excluded":      fit.Excluded,
		},
		TrainedAt: fit.Bundle.TrainedAt,
		CreatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	if err := artifact.SetCurrent(s.artifactDir, runID); err != nil {
		return nil, err
	}

	s.metrics.ObserveTrainingRun()
	span.SetAttributes(
		attribute.String("model.run_id", runID),
		attribute.Int("model.train_samples", fit.TrainSamples),
		attribute.Int("model.test_samples", fit.TestSamples),
	)
	s.log.Info("model trained",
		zap.String("run_id", runID),
		zap.String("artifact_dir", dir),
		zap.Int("train_samples", fit.TrainSamples),
		zap.Int("test_samples", fit.TestSamples),
		zap.Any("excluded", fit.Excluded),
		zap.Float64("accuracy", fit.Report.Accuracy),
	)
	s.log.Info("classification report\n" + fit.Report.String())

	info := fit.Bundle.Info()
	return &domain.TrainResult{
		RunID:        runID,
		ArtifactDir:  dir,
		Checksum:     checksum,
		TrainSamples: fit.TrainSamples,
		TestSamples:  fit.TestSamples,
		Excluded:     fit.Excluded,
		Report:       fit.Report,
		Importances:  info.Importances,
	}, nil
}

func (s *Service) Load(ctx context.Context) (*domain.Bundle, error) {
	_, span := tracer.Start(ctx, "model.Load")
	defer span.End()

	b, err := artifact.LoadCurrent(s.artifactDir)
	if err != nil {
		return nil, err
	}
	s.log.Info("model loaded", zap.String("run_id", b.RunID), zap.Time("trained_at", b.TrainedAt))
	return b, nil
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	return s.repo.List(ctx, s.db, limit)
}
