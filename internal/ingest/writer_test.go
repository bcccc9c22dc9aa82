package ingest

import (
	"bytes"
	"testing"

	"github.com/railzwaylabs/riskscore/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededDatasetSurvivesCSV(t *testing.T) {
	opts := seed.DefaultOptions()
	opts.Customers = 40
	ds := seed.Generate(opts)

	var customersBuf, invoicesBuf bytes.Buffer
	require.NoError(t, WriteCustomers(&customersBuf, ds.Customers))
	require.NoError(t, WriteInvoices(&invoicesBuf, ds.Invoices))

	customers, err := ReadCustomers(&customersBuf)
	require.NoError(t, err)
	invoices, err := ReadInvoices(&invoicesBuf)
	require.NoError(t, err)

	assert.Equal(t, ds.Customers, customers)
	assert.Equal(t, ds.Invoices, invoices)
}
