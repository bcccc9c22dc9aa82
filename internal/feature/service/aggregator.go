package service

import (
	"sort"

	"github.com/railzwaylabs/riskscore/internal/feature/domain"
	"github.com/shopspring/decimal"
)

// Aggregate reduces flagged rows to one aggregate per customer, sorted by
// customer ID. Customers without rows produce nothing here.
func Aggregate(rows []domain.FlaggedRow) []domain.CustomerAggregate {
	groups := make(map[string][]domain.FlaggedRow)
	for _, row := range rows {
		groups[row.CustomerID] = append(groups[row.CustomerID], row)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.CustomerAggregate, 0, len(ids))
	for _, id := range ids {
		out = append(out, reduceGroup(id, groups[id]))
	}
	return out
}

func reduceGroup(customerID string, rows []domain.FlaggedRow) domain.CustomerAggregate {
	// Delay sums are plain floats; fixing the order by invoice ID keeps them
	// bit-identical under shuffled input. Money is summed exactly.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].InvoiceID < rows[j].InvoiceID
	})

	var (
		amountSum  = decimal.Zero
		paidSum    = decimal.Zero
		lateSum    float64
		defaultSum float64
		delaySum   float64
		delayKnown int
	)
	for _, row := range rows {
		amount := decimal.NewFromFloat(row.Amount)
		amountSum = amountSum.Add(amount)
		if row.IsPaid {
			paidSum = paidSum.Add(amount)
		}
		if row.IsLate {
			lateSum++
		}
		if row.IsDefault {
			defaultSum++
		}
		if row.DelayDays != nil {
			delaySum += *row.DelayDays
			delayKnown++
		}
	}

	n := float64(len(rows))
	agg := domain.CustomerAggregate{
		CustomerID:          customerID,
		TotalInvoices:       len(rows),
		AvgInvoiceAmount:    amountSum.Div(decimal.NewFromInt(int64(len(rows)))).InexactFloat64(),
		LatePaymentRate:     lateSum / n,
		DefaultRate:         defaultSum / n,
		TotalAmountInvoiced: amountSum.InexactFloat64(),
		TotalAmountPaid:     paidSum.InexactFloat64(),
	}
	if delayKnown > 0 {
		avg := delaySum / float64(delayKnown)
		agg.AvgDelayDays = &avg
	}
	return agg
}
