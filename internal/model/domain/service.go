package domain

import (
	"context"

	"github.com/railzwaylabs/riskscore/internal/classifier"
)

type Service interface {
	// Train fits a new bundle from the current feature table, writes its
	// artifacts, records the run, and makes it the current model.
	Train(ctx context.Context) (*TrainResult, error)
	// Load reads the current bundle from the artifact store.
	Load(ctx context.Context) (*Bundle, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}

type TrainResult struct {
	RunID        string             `json:"run_id"`
	ArtifactDir  string             `json:"artifact_dir"`
	Checksum     string             `json:"checksum"`
	TrainSamples int                `json:"train_samples"`
	TestSamples  int                `json:"test_samples"`
	Excluded     map[string]int     `json:"excluded"`
	Report       classifier.Report  `json:"report"`
	Importances  map[string]float64 `json:"feature_importances"`
}
