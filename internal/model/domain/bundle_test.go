package domain

import (
	"testing"

	"github.com/railzwaylabs/riskscore/internal/classifier"
	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
	"github.com/railzwaylabs/riskscore/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }
func intPtr(v int) *int { return &v }

func vocabs(t *testing.T) (*vocabulary.Vocabulary, *vocabulary.Vocabulary) {
	t.Helper()
	industry, err := vocabulary.Fit("industry", []string{"Retail", "Construction"})
	require.NoError(t, err)
	region, err := vocabulary.Fit("region", []string{"North", "West"})
	require.NoError(t, err)
	return industry, region
}

func completeRow() featuredomain.CustomerFeatures {
	return featuredomain.CustomerFeatures{
		CustomerID:          "C1",
		Industry:            "Retail",
		Region:              "West",
		CreditTermDays:      intPtr(30),
		TotalInvoices:       3,
		LatePaymentRate:     f64(0.25),
		DefaultRate:         f64(0.1),
		AvgDelayDays:        f64(4.5),
		TotalAmountInvoiced: 1200,
	}
}

func TestEncodeFeatureOrder(t *testing.T) {
	industry, region := vocabs(t)

	x, err := Encode(completeRow(), industry, region)
	require.NoError(t, err)
	require.Len(t, x, len(FeatureNames))
	assert.Equal(t, []float64{0.25, 0.1, 4.5, 1200, 30, 1, 1}, x)
}

func TestEncodeZeroInvoiceCustomerIsUndefined(t *testing.T) {
	industry, region := vocabs(t)
	row := featuredomain.CustomerFeatures{
		CustomerID:     "C2",
		Industry:       "Retail",
		Region:         "North",
		CreditTermDays: intPtr(30),
		AvgDelayDays:   f64(0),
	}

	_, err := Encode(row, industry, region)
	assert.ErrorIs(t, err, classifier.ErrUndefinedFeature)
	assert.Contains(t, err.Error(), "late_payment_rate")
}

func TestEncodeMissingCreditTerm(t *testing.T) {
	industry, region := vocabs(t)
	row := completeRow()
	row.CreditTermDays = nil

	_, err := Encode(row, industry, region)
	assert.ErrorIs(t, err, classifier.ErrUndefinedFeature)
}

func TestEncodeUnknownCategory(t *testing.T) {
	industry, region := vocabs(t)
	row := completeRow()
	row.Industry = "Aerospace"

	_, err := Encode(row, industry, region)
	assert.ErrorIs(t, err, vocabulary.ErrUnknownCategory)

	row = completeRow()
	row.Region = "Atlantis"
	_, err = Encode(row, industry, region)
	assert.ErrorIs(t, err, vocabulary.ErrUnknownCategory)
}

func TestEncodeUndefinedWinsOverUnknownCategory(t *testing.T) {
	industry, region := vocabs(t)
	row := completeRow()
	row.Industry = "Aerospace"
	row.DefaultRate = nil

	_, err := Encode(row, industry, region)
	assert.ErrorIs(t, err, classifier.ErrUndefinedFeature)
}

func TestBundlePredictAndInfo(t *testing.T) {
	industry, region := vocabs(t)
	x := [][]float64{
		{0.9, 0.5, 20, 100, 30, 0, 0},
		{0.8, 0.4, 15, 100, 30, 1, 1},
		{0.1, 0.0, 0, 100, 30, 0, 1},
		{0.0, 0.0, -1, 100, 30, 1, 0},
	}
	forest, err := classifier.Fit(x, []int{1, 1, 0, 0}, classifier.Config{NumTrees: 5, Seed: 42})
	require.NoError(t, err)

	b := &Bundle{RunID: "run-1", FeatureNames: FeatureNames, Forest: forest, Industry: industry, Region: region}
	p, err := b.Predict(completeRow())
	require.NoError(t, err)
	assert.Equal(t, "C1", p.CustomerID)
	assert.Contains(t, Labels, p.PredictedLabel)
	assert.GreaterOrEqual(t, p.RiskProbability, 0.0)
	assert.LessOrEqual(t, p.RiskProbability, 1.0)

	info := b.Info()
	assert.Equal(t, "run-1", info.RunID)
	assert.Equal(t, 5, info.NumTrees)
	assert.Equal(t, []string{"Construction", "Retail"}, info.IndustryClasses)
	assert.Len(t, info.Importances, len(FeatureNames))
}
