// Package domain defines the serving contract: which customers to score and
// what comes back.
package domain

import (
	"context"
	"errors"

	modeldomain "github.com/railzwaylabs/riskscore/internal/model/domain"
)

const (
	ReasonUndefinedFeature = "undefined_feature"
	ReasonUnknownCategory  = "unknown_category"
	ReasonNotFound         = "not_found"
)

var ErrInvalidRequest = errors.New("invalid_request")

type Service interface {
	Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error)
}

// PredictRequest selects customers to score. Empty lists select everything;
// non-empty lists are intersected.
type PredictRequest struct {
	CustomerIDs []string `json:"customer_ids" validate:"max=10000,dive,required"`
	Industries  []string `json:"industries" validate:"max=100,dive,required"`
	Regions     []string `json:"regions" validate:"max=100,dive,required"`
}

type Excluded struct {
	CustomerID string `json:"customer_id"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
}

// Summary describes the selected customers, scored or not. Means skip
// undefined values and are nil when nothing is defined.
type Summary struct {
	TotalCustomers      int      `json:"total_customers"`
	MeanLatePaymentRate *float64 `json:"mean_late_payment_rate"`
	MeanDelayDays       *float64 `json:"mean_delay_days"`
}

type PredictResponse struct {
	ModelRunID  string                   `json:"model_run_id"`
	Predictions []modeldomain.Prediction `json:"predictions"`
	Excluded    []Excluded               `json:"excluded"`
	Summary     Summary                  `json:"summary"`
}
