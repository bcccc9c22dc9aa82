package ingest

import (
	"strings"
	"testing"
	"time"

	customerdomain "github.com/railzwaylabs/riskscore/internal/customer/domain"
	invoicedomain "github.com/railzwaylabs/riskscore/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customersCSV = `Customer_ID,Customer_Name,Industry,Region,Customer_Since,Credit_Term_Days,Risk_Category
C1,Acme Retail,Retail,North,2020-01-15,30,High
C2,Beta Build,Construction,West,2019-06-01,45.0,
C3,,Healthcare,East,2021-03-10,,Low
`

const invoicesCSV = `Invoice_ID,Customer_ID,Amount,Invoice_Date,Due_Date,Paid_Date,Is_Paid,Delay_Days
I-1,C1,100.50,2024-01-01,2024-01-31,2024-02-05,True,5.0
I-2,C1,200,2024-02-01,2024-03-02,2024-02-28,true,-3
I-3,C2,50,2024-03-01,2024-03-31,,False,
I-4,C404,10,2024-03-01,2024-03-31,,0,NaN
`

func TestReadCustomers(t *testing.T) {
	customers, err := ReadCustomers(strings.NewReader(customersCSV))
	require.NoError(t, err)
	require.Len(t, customers, 3)

	c1 := customers[0]
	assert.Equal(t, "C1", c1.CustomerID)
	assert.Equal(t, "Acme Retail", c1.Name)
	assert.Equal(t, time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), c1.CustomerSince)
	require.NotNil(t, c1.CreditTermDays)
	assert.Equal(t, 30, *c1.CreditTermDays)
	require.NotNil(t, c1.RiskCategory)
	assert.Equal(t, "High", *c1.RiskCategory)

	require.NotNil(t, customers[1].CreditTermDays)
	assert.Equal(t, 45, *customers[1].CreditTermDays)
	assert.Nil(t, customers[1].RiskCategory)
	assert.Nil(t, customers[2].CreditTermDays)
}

func TestReadCustomersOptionalColumnsMayBeAbsent(t *testing.T) {
	customers, err := ReadCustomers(strings.NewReader("Customer_ID,Industry,Region,Customer_Since\nC1,Retail,North,2020-01-15\n"))
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Nil(t, customers[0].CreditTermDays)
	assert.Nil(t, customers[0].RiskCategory)
}

func TestReadCustomersErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want error
	}{
		{"empty", "", ErrEmptyFile},
		{"missing column", "Customer_ID,Industry\nC1,Retail\n", ErrMissingColumn},
		{"duplicate", "Customer_ID,Industry,Region,Customer_Since\nC1,Retail,North,2020-01-15\nC1,Retail,North,2020-01-15\n", customerdomain.ErrDuplicateCustomer},
		{"blank industry", "Customer_ID,Industry,Region,Customer_Since\nC1,,North,2020-01-15\n", customerdomain.ErrInvalidCustomer},
		{"missing since", "Customer_ID,Industry,Region,Customer_Since\nC1,Retail,North,\n", customerdomain.ErrInvalidCustomer},
		{"negative terms", "Customer_ID,Industry,Region,Customer_Since,Credit_Term_Days\nC1,Retail,North,2020-01-15,-5\n", customerdomain.ErrInvalidCustomer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCustomers(strings.NewReader(tt.csv))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := ReadCustomers(strings.NewReader("Customer_ID,Industry,Region,Customer_Since,Credit_Term_Days\nC1,Retail,North,2020-01-15,30.5\n"))
	assert.ErrorContains(t, err, "not a whole number")

	_, err = ReadCustomers(strings.NewReader("Customer_ID,Industry,Region,Customer_Since\nC1,Retail,North,yesterday\n"))
	assert.ErrorContains(t, err, "line 2 column Customer_Since")
}

func TestReadInvoices(t *testing.T) {
	invoices, err := ReadInvoices(strings.NewReader(invoicesCSV))
	require.NoError(t, err)
	require.Len(t, invoices, 4)

	i1 := invoices[0]
	assert.Equal(t, 100.5, i1.Amount)
	assert.True(t, i1.IsPaid)
	require.NotNil(t, i1.PaidDate)
	assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), *i1.PaidDate)
	require.NotNil(t, i1.DelayDays)
	assert.Equal(t, 5.0, *i1.DelayDays)

	require.NotNil(t, invoices[1].DelayDays)
	assert.Equal(t, -3.0, *invoices[1].DelayDays)

	i3 := invoices[2]
	assert.False(t, i3.IsPaid)
	assert.Nil(t, i3.PaidDate)
	assert.Nil(t, i3.DelayDays)

	// Unknown customers are accepted here; the feature join drops them.
	assert.Equal(t, "C404", invoices[3].CustomerID)
	assert.Nil(t, invoices[3].DelayDays)
}

func TestReadInvoicesErrors(t *testing.T) {
	header := "Invoice_ID,Customer_ID,Amount,Invoice_Date,Due_Date,Is_Paid\n"
	tests := []struct {
		name string
		csv  string
		want error
	}{
		{"missing column", "Invoice_ID,Customer_ID\nI-1,C1\n", ErrMissingColumn},
		{"negative amount", header + "I-1,C1,-1,2024-01-01,2024-01-31,true\n", invoicedomain.ErrInvalidInvoice},
		{"duplicate", header + "I-1,C1,1,2024-01-01,2024-01-31,true\nI-1,C1,1,2024-01-01,2024-01-31,true\n", invoicedomain.ErrDuplicateInvoice},
		{"missing customer", header + "I-1,,1,2024-01-01,2024-01-31,true\n", invoicedomain.ErrInvalidInvoice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadInvoices(strings.NewReader(tt.csv))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := ReadInvoices(strings.NewReader(header + "I-1,C1,1,2024-01-01,2024-01-31,maybe\n"))
	assert.ErrorContains(t, err, "column Is_Paid")

	_, err = ReadInvoices(strings.NewReader(header + "I-1,C1,abc,2024-01-01,2024-01-31,true\n"))
	assert.ErrorContains(t, err, "column Amount")
}
