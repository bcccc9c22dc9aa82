package service_test

import (
	"fmt"
	"math/rand/v2"

	featuredomain "github.com/railzwaylabs/riskscore/internal/feature/domain"
)

func f64(v float64) *float64 { return &v }
func intPtr(v int) *int { return &v }
func strPtr(v string) *string { return &v }

var (
	industries = []string{"Construction", "Healthcare", "Retail", "Technology"}
	regions    = []string{"East", "North", "West"}
)

// featureRows builds a labeled table where High risk follows the late
// payment rate, plus one zero-invoice and one unlabeled customer.
func featureRows(n int) []featuredomain.CustomerFeatures {
	rng := rand.New(rand.NewPCG(5, 5))
	rows := make([]featuredomain.CustomerFeatures, 0, n+2)
	for i := 0; i < n; i++ {
		late := rng.Float64()
		category := "Low"
		if late > 0.6 {
			category = "High"
		} else if late > 0.3 {
			category = "Medium"
		}
		rows = append(rows, featuredomain.CustomerFeatures{
			CustomerID:          fmt.Sprintf("C%03d", i),
			Industry:            industries[i%len(industries)],
			Region:              regions[i%len(regions)],
			CreditTermDays:      intPtr(30 + 15*(i%3)),
			RiskCategory:        strPtr(category),
			TotalInvoices:       5,
			AvgInvoiceAmount:    f64(1000),
			LatePaymentRate:     f64(late),
			DefaultRate:         f64(late / 3),
			AvgDelayDays:        f64(late * 20),
			TotalAmountInvoiced: 5000,
			TotalAmountPaid:     4000,
		})
	}

	rows = append(rows,
		featuredomain.CustomerFeatures{
			CustomerID:     "Z-EMPTY",
			Industry:       "Hospitality",
			Region:         "South",
			CreditTermDays: intPtr(30),
			RiskCategory:   strPtr("Low"),
			AvgDelayDays:   f64(0),
		},
		featuredomain.CustomerFeatures{
			CustomerID:          "Z-UNLABELED",
			Industry:            "Retail",
			Region:              "North",
			CreditTermDays:      intPtr(30),
			TotalInvoices:       1,
			AvgInvoiceAmount:    f64(10),
			LatePaymentRate:     f64(0),
			DefaultRate:         f64(0),
			AvgDelayDays:        f64(0),
			TotalAmountInvoiced: 10,
			TotalAmountPaid:     10,
		},
	)
	return rows
}
