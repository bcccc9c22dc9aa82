package service_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/riskscore/internal/clock"
	"github.com/railzwaylabs/riskscore/internal/config"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	"github.com/railzwaylabs/riskscore/internal/model/artifact"
	"github.com/railzwaylabs/riskscore/internal/model/domain"
	"github.com/railzwaylabs/riskscore/internal/model/repository"
	"github.com/railzwaylabs/riskscore/internal/model/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubFeatures struct {
	rows []featuredomain.CustomerFeatures
	err  error
}

func (s *stubFeatures) Build(context.Context) (*featuredomain.BuildResult, error) {
	return nil, errors.New("not implemented")
}

func (s *stubFeatures) List(context.Context, featuredomain.ListFilter) ([]featuredomain.CustomerFeatures, error) {
	return s.rows, s.err
}

func (s *stubFeatures) Export(context.Context, io.Writer) (int, error) {
	return 0, errors.New("not implemented")
}

func setupTrainer(t *testing.T, rows []featuredomain.CustomerFeatures) (domain.Service, *gorm.DB, string) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Run{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	dir := t.TempDir()
	cfg := config.Config{
		Artifact: config.ArtifactConfig{Dir: dir},
		Training: config.TrainingConfig{TestRatio: 0.2, Seed: 42, NumTrees: 20},
	}

	svc := service.New(service.Params{
		DB:       db,
		Log:      zap.NewNop(),
		Cfg:      cfg,
		Clock:    clock.FixedClock{At: trainedAt},
		GenID:    node,
		Repo:     repository.Provide(),
		Features: &stubFeatures{rows: rows},
	})
	return svc, db, dir
}

func TestTrainWritesBundleAndRecordsRun(t *testing.T) {
	svc, db, dir := setupTrainer(t, featureRows(60))
	ctx := context.Background()

	result, err := svc.Train(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, filepath.Join(dir, result.RunID), result.ArtifactDir)
	assert.Len(t, result.Checksum, 64)
	assert.Equal(t, 2, len(result.Report.Classes))

	for _, name := range []string{artifact.ManifestFile, artifact.ModelFile, artifact.IndustryVocabFile, artifact.RegionVocabFile} {
		_, err := os.Stat(filepath.Join(result.ArtifactDir, name))
		assert.NoError(t, err, name)
	}

	current, err := artifact.Current(dir)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, current)

	run, err := repository.Provide().FindByRunID(ctx, db, result.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, result.Checksum, run.Checksum)
	assert.Equal(t, 2, run.ExcludedRows)
	assert.Equal(t, result.TrainSamples, run.TrainSamples)

	loaded, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, loaded.RunID)

	runs, err := svc.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestTrainWithoutFeatures(t *testing.T) {
	svc, _, _ := setupTrainer(t, nil)

	_, err := svc.Train(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoFeatures)
}

func TestLoadWithoutModel(t *testing.T) {
	svc, _, _ := setupTrainer(t, nil)

	_, err := svc.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoModel)
}
