// Package seed generates a synthetic SME customer and invoice dataset for
// local development and demos.
package seed

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	customerdomain "github.com/railzwaylabs/riskscore/internal/customer/domain"
	invoicedomain "github.com/railzwaylabs/riskscore/internal/invoice/domain"
)

var (
	Industries = []string{"Retail", "Manufacturing", "Construction", "Hospitality", "Technology", "Healthcare"}
	Regions    = []string{"North", "South", "East", "West", "Central"}

	creditTerms = []int{15, 30, 45, 60}

	// industryRisk shifts the base payment behavior per industry.
	industryRisk = map[string]float64{
		"Retail":        0.05,
		"Manufacturing": 0.0,
		"Construction":  0.2,
		"Hospitality":   0.15,
		"Technology":    -0.1,
		"Healthcare":    -0.05,
	}

	namePrefixes = []string{"Apex", "Blue", "Cedar", "Delta", "Evergreen", "Summit", "Harbor", "Iron", "Juniper", "Keystone"}
	nameSuffixes = map[string]string{
		"Retail":        "Stores",
		"Manufacturing": "Works",
		"Construction":  "Builders",
		"Hospitality":   "Hotels",
		"Technology":    "Labs",
		"Healthcare":    "Clinic",
	}
)

type Options struct {
	Customers int
	Seed      uint64
	// AsOf is the observation date; invoices are issued in the year before it.
	AsOf time.Time
	// ZeroInvoiceRate is the share of customers generated without invoices.
	ZeroInvoiceRate float64
	// OrphanInvoices reference customers missing from the roster.
	OrphanInvoices int
}

func DefaultOptions() Options {
	return Options{
		Customers:       200,
		Seed:            42,
		AsOf:            time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		ZeroInvoiceRate: 0.05,
		OrphanInvoices:  3,
	}
}

type Dataset struct {
	Customers []customerdomain.Customer
	Invoices  []invoicedomain.Invoice
}

// Generate is deterministic for a given Options value.
func Generate(opts Options) Dataset {
	rng := rand.New(rand.NewPCG(opts.Seed, 0x5eed))
	asOf := opts.AsOf.UTC().Truncate(24 * time.Hour)

	var ds Dataset
	invoiceSeq := 0
	nextInvoiceID := func() string {
		invoiceSeq++
		return fmt.Sprintf("INV%06d", invoiceSeq)
	}

	for i := 0; i < opts.Customers; i++ {
		industry := Industries[rng.IntN(len(Industries))]
		region := Regions[rng.IntN(len(Regions))]
		terms := creditTerms[rng.IntN(len(creditTerms))]
		risk := clamp(0.3+industryRisk[industry]+rng.NormFloat64()*0.2, 0, 1)

		c := customerdomain.Customer{
			CustomerID:    fmt.Sprintf("CUST%04d", i+1),
			Name:          fmt.Sprintf("%s %s %d", namePrefixes[rng.IntN(len(namePrefixes))], nameSuffixes[industry], i+1),
			Industry:      industry,
			Region:        region,
			CustomerSince: asOf.AddDate(0, 0, -(365 + rng.IntN(9*365))),
		}
		if rng.Float64() >= 0.01 {
			c.CreditTermDays = &terms
		}

		var late, defaulted, count int
		if rng.Float64() >= opts.ZeroInvoiceRate {
			count = 3 + rng.IntN(22)
			for j := 0; j < count; j++ {
				inv := invoice(rng, nextInvoiceID(), c.CustomerID, asOf, terms, risk)
				if inv.DelayDays != nil && *inv.DelayDays > 0 {
					late++
				}
				if !inv.IsPaid {
					defaulted++
				}
				ds.Invoices = append(ds.Invoices, inv)
			}
		}

		if rng.Float64() >= 0.02 {
			category := riskCategory(rng, risk, late, defaulted, count)
			c.RiskCategory = &category
		}
		ds.Customers = append(ds.Customers, c)
	}

	for i := 0; i < opts.OrphanInvoices; i++ {
		orphan := fmt.Sprintf("CUST9%03d", i+1)
		ds.Invoices = append(ds.Invoices, invoice(rng, nextInvoiceID(), orphan, asOf, 30, 0.5))
	}
	return ds
}

func invoice(rng *rand.Rand, id, customerID string, asOf time.Time, terms int, risk float64) invoicedomain.Invoice {
	issued := asOf.AddDate(0, 0, -rng.IntN(365))
	due := issued.AddDate(0, 0, terms)
	amount := math.Round(math.Exp(6+rng.Float64()*3.5)*100) / 100

	inv := invoicedomain.Invoice{
		InvoiceID:   id,
		CustomerID:  customerID,
		Amount:      amount,
		InvoiceDate: issued,
		DueDate:     due,
	}

	// Riskier customers pay later and leave more invoices open.
	if rng.Float64() < 0.35*risk+0.02 {
		return inv
	}
	delay := math.Round(rng.NormFloat64()*6 + (risk*40 - 8))
	paid := due.AddDate(0, 0, int(delay))
	if paid.After(asOf) {
		// Not settled by the observation date.
		return inv
	}
	inv.IsPaid = true
	inv.PaidDate = &paid
	inv.DelayDays = &delay
	return inv
}

func riskCategory(rng *rand.Rand, risk float64, late, defaulted, count int) string {
	score := risk
	if count > 0 {
		score = 0.5*float64(late)/float64(count) + 0.8*float64(defaulted)/float64(count)
	}
	score += rng.NormFloat64() * 0.05

	switch {
	case score > 0.45:
		return "High"
	case score > 0.25:
		return "Medium"
	default:
		return "Low"
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
