// Package domain defines the trained risk model bundle, its run record, and
// the prediction contract.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	LabelLowMedium = "Low/Medium"
	LabelHigh      = "High"

	// HighRiskCategory is the risk category that maps to the positive label.
	HighRiskCategory = "High"
)

// Labels are indexed by class: 0 is Low/Medium, 1 is High.
var Labels = []string{LabelLowMedium, LabelHigh}

// FeatureNames is the fixed column order of every encoded vector.
var FeatureNames = []string{
	"late_payment_rate",
	"default_rate",
	"avg_delay_days",
	"total_amount_invoiced",
	"credit_term_days",
	"industry_code",
	"region_code",
}

var (
	ErrModelVersionMismatch     = errors.New("model_version_mismatch")
	ErrChecksumMismatch         = errors.New("checksum_mismatch")
	ErrNoModel                  = errors.New("no_model")
	ErrNoFeatures               = errors.New("no_features")
	ErrInsufficientTrainingData = errors.New("insufficient_training_data")
)

// Run records one training run. The evaluation report is not stored.
type Run struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	RunID        string            `gorm:"column:run_id;type:text;not null;uniqueIndex" json:"run_id"`
	ArtifactPath string            `gorm:"column:artifact_path;type:text;not null" json:"artifact_path"`
	Checksum     string            `gorm:"column:checksum;type:text;not null" json:"checksum"`
	TrainSamples int               `gorm:"column:train_samples;not null" json:"train_samples"`
	TestSamples  int               `gorm:"column:test_samples;not null" json:"test_samples"`
	ExcludedRows int               `gorm:"column:excluded_rows;not null" json:"excluded_rows"`
	Metadata     datatypes.JSONMap `gorm:"column:metadata;type:json" json:"metadata,omitempty"`
	TrainedAt    time.Time         `gorm:"column:trained_at;not null" json:"trained_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName sets the database table name.
func (Run) TableName() string { return "model_runs" }

type Prediction struct {
	CustomerID      string  `json:"customer_id"`
	PredictedLabel  string  `json:"predicted_label"`
	RiskProbability float64 `json:"risk_probability"`
}
