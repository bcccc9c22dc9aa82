package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(DefaultOptions())
	b := Generate(DefaultOptions())
	assert.Equal(t, a, b)

	opts := DefaultOptions()
	opts.Seed = 7
	c := Generate(opts)
	assert.NotEqual(t, a.Invoices, c.Invoices)
}

func TestGenerateShape(t *testing.T) {
	opts := DefaultOptions()
	opts.Customers = 300
	opts.ZeroInvoiceRate = 0.1
	ds := Generate(opts)
	require.Len(t, ds.Customers, 300)

	roster := make(map[string]bool)
	for _, c := range ds.Customers {
		assert.False(t, roster[c.CustomerID], "duplicate %s", c.CustomerID)
		roster[c.CustomerID] = true
		assert.Contains(t, Industries, c.Industry)
		assert.Contains(t, Regions, c.Region)
		assert.True(t, c.CustomerSince.Before(opts.AsOf))
	}

	invoiced := make(map[string]bool)
	ids := make(map[string]bool)
	orphans, open, categories := 0, 0, map[string]int{}
	for _, inv := range ds.Invoices {
		assert.False(t, ids[inv.InvoiceID], "duplicate %s", inv.InvoiceID)
		ids[inv.InvoiceID] = true
		assert.GreaterOrEqual(t, inv.Amount, 0.0)
		assert.False(t, inv.DueDate.Before(inv.InvoiceDate))

		if !roster[inv.CustomerID] {
			orphans++
		}
		invoiced[inv.CustomerID] = true
		if !inv.IsPaid {
			open++
			assert.Nil(t, inv.DelayDays)
			assert.Nil(t, inv.PaidDate)
		} else {
			require.NotNil(t, inv.PaidDate)
			assert.False(t, inv.PaidDate.After(opts.AsOf))
		}
	}
	for _, c := range ds.Customers {
		if c.RiskCategory != nil {
			categories[*c.RiskCategory]++
		}
	}

	assert.Equal(t, opts.OrphanInvoices, orphans)
	assert.Greater(t, open, 0)
	assert.Less(t, len(invoiced)-orphans, len(ds.Customers), "some customers have no invoices")
	assert.Greater(t, categories["High"], 0)
	assert.Greater(t, categories["Low"], 0)
}
