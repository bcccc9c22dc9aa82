package ingest

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	customerdomain "github.com/railzwaylabs/riskscore/internal/customer/domain"
	invoicedomain "github.com/railzwaylabs/riskscore/internal/invoice/domain"
)

// WriteCustomers writes customers in the layout ReadCustomers accepts.
func WriteCustomers(w io.Writer, customers []customerdomain.Customer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CustomerColumns); err != nil {
		return err
	}
	for _, c := range customers {
		terms := ""
		if c.CreditTermDays != nil {
			terms = strconv.Itoa(*c.CreditTermDays)
		}
		category := ""
		if c.RiskCategory != nil {
			category = *c.RiskCategory
		}
		if err := cw.Write([]string{
			c.CustomerID,
			c.Name,
			c.Industry,
			c.Region,
			formatDate(c.CustomerSince),
			terms,
			category,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteInvoices writes invoices in the layout ReadInvoices accepts.
func WriteInvoices(w io.Writer, invoices []invoicedomain.Invoice) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InvoiceColumns); err != nil {
		return err
	}
	for _, inv := range invoices {
		paid := ""
		if inv.PaidDate != nil {
			paid = formatDate(*inv.PaidDate)
		}
		delay := ""
		if inv.DelayDays != nil {
			delay = strconv.FormatFloat(*inv.DelayDays, 'f', -1, 64)
		}
		if err := cw.Write([]string{
			inv.InvoiceID,
			inv.CustomerID,
			strconv.FormatFloat(inv.Amount, 'f', -1, 64),
			formatDate(inv.InvoiceDate),
			formatDate(inv.DueDate),
			paid,
			strconv.FormatBool(inv.IsPaid),
			delay,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
