package service

import (
	customerdomain "github.com/railzwaylabs/riskscore/internal/customer/domain"
	"github.com/railzwaylabs/riskscore/internal/feature/domain"
	invoicedomain "github.com/railzwaylabs/riskscore/internal/invoice/domain"
)

// Join attaches each invoice's customer attributes. Invoices whose customer
// is absent from the roster are dropped without error; the number dropped is
// returned so callers can report it.
func Join(invoices []invoicedomain.Invoice, customers []customerdomain.Customer) ([]domain.JoinedRow, int) {
	roster := make(map[string]*customerdomain.Customer, len(customers))
	for i := range customers {
		roster[customers[i].CustomerID] = &customers[i]
	}

	rows := make([]domain.JoinedRow, 0, len(invoices))
	dropped := 0
	for _, inv := range invoices {
		c, ok := roster[inv.CustomerID]
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, domain.JoinedRow{
			InvoiceID:     inv.InvoiceID,
			CustomerID:    inv.CustomerID,
			Amount:        inv.Amount,
			InvoiceDate:   inv.InvoiceDate,
			DueDate:       inv.DueDate,
			PaidDate:      inv.PaidDate,
			IsPaid:        inv.IsPaid,
			DelayDays:     inv.DelayDays,
			Industry:      c.Industry,
			Region:        c.Region,
			CustomerSince: c.CustomerSince,
		})
	}
	return rows, dropped
}
