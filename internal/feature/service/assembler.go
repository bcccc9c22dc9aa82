package service

import (
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/railzwaylabs/riskscore/internal/customer/domain"
	"github.com/railzwaylabs/riskscore/internal/feature/domain"
)

// Assemble places the aggregates onto the full roster, one row per customer
// in roster order. For customers without invoices the counts and sums are 0,
// AvgDelayDays is filled with 0, and every mean or rate stays undefined.
// AvgDelayDays is also 0 when a customer has invoices but no known delay.
func Assemble(customers []customerdomain.Customer, aggregates []domain.CustomerAggregate, buildID snowflake.ID, now time.Time) []domain.CustomerFeatures {
	byCustomer := make(map[string]domain.CustomerAggregate, len(aggregates))
	for _, agg := range aggregates {
		byCustomer[agg.CustomerID] = agg
	}

	out := make([]domain.CustomerFeatures, 0, len(customers))
	for _, c := range customers {
		row := domain.CustomerFeatures{
			CustomerID:     c.CustomerID,
			BuildID:        buildID,
			CustomerName:   c.Name,
			Industry:       c.Industry,
			Region:         c.Region,
			CustomerSince:  c.CustomerSince,
			CreditTermDays: c.CreditTermDays,
			RiskCategory:   c.RiskCategory,
			CreatedAt:      now,
		}

		agg, ok := byCustomer[c.CustomerID]
		if !ok {
			row.AvgDelayDays = float64Ptr(0)
			out = append(out, row)
			continue
		}

		row.TotalInvoices = agg.TotalInvoices
		row.AvgInvoiceAmount = float64Ptr(agg.AvgInvoiceAmount)
		row.LatePaymentRate = float64Ptr(agg.LatePaymentRate)
		row.DefaultRate = float64Ptr(agg.DefaultRate)
		// No known delay reads as no observed lateness, same as the
		// zero-invoice fill.
		row.AvgDelayDays = float64Ptr(0)
		if agg.AvgDelayDays != nil {
			row.AvgDelayDays = float64Ptr(*agg.AvgDelayDays)
		}
		row.TotalAmountInvoiced = agg.TotalAmountInvoiced
		row.TotalAmountPaid = agg.TotalAmountPaid
		out = append(out, row)
	}
	return out
}

func float64Ptr(v float64) *float64 {
	return &v
}
