package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	customerdomain "github.com/railzwaylabs/riskscore/internal/customer/domain"
	invoicedomain "github.com/railzwaylabs/riskscore/internal/invoice/domain"
	"github.com/spf13/cast"
)

var (
	ErrMissingColumn = errors.New("missing_column")
	ErrEmptyFile     = errors.New("empty_file")
)

var CustomerColumns = []string{
	"Customer_ID",
	"Customer_Name",
	"Industry",
	"Region",
	"Customer_Since",
	"Credit_Term_Days",
	"Risk_Category",
}

var InvoiceColumns = []string{
	"Invoice_ID",
	"Customer_ID",
	"Amount",
	"Invoice_Date",
	"Due_Date",
	"Paid_Date",
	"Is_Paid",
	"Delay_Days",
}

// Customer_Name, Credit_Term_Days and Risk_Category may be absent from the
// header entirely.
var optionalColumns = map[string]bool{
	"Customer_Name":    true,
	"Credit_Term_Days": true,
	"Risk_Category":    true,
	"Paid_Date":        true,
	"Delay_Days":       true,
}

type customerRecord struct {
	CustomerID     string    `validate:"required"`
	Name           string    `validate:"max=255"`
	Industry       string    `validate:"required"`
	Region         string    `validate:"required"`
	CustomerSince  time.Time `validate:"required"`
	CreditTermDays *int      `validate:"omitempty,gte=0"`
	RiskCategory   *string   `validate:"omitempty,min=1"`
}

type invoiceRecord struct {
	InvoiceID   string     `validate:"required"`
	CustomerID  string     `validate:"required"`
	Amount      float64    `validate:"gte=0"`
	InvoiceDate time.Time  `validate:"required"`
	DueDate     time.Time  `validate:"required"`
	PaidDate    *time.Time `validate:"omitempty"`
	IsPaid      bool
	DelayDays   *float64
}

var validate = validator.New()

// row gives header-keyed access to one CSV record.
type row struct {
	line   int
	index  map[string]int
	record []string
}

func (r row) get(column string) string {
	i, ok := r.index[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r row) errorf(column string, err error) error {
	return fmt.Errorf("line %d column %s: %w", r.line, column, err)
}

func (r row) float(column string) (*float64, error) {
	s := r.get(column)
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	v, err := cast.ToFloat64E(s)
	if err != nil {
		return nil, r.errorf(column, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, nil
	}
	return &v, nil
}

func (r row) integer(column string) (*int, error) {
	f, err := r.float(column)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) {
		return nil, r.errorf(column, fmt.Errorf("%v is not a whole number", *f))
	}
	v := int(*f)
	return &v, nil
}

func (r row) date(column string) (*time.Time, error) {
	s := r.get(column)
	if s == "" {
		return nil, nil
	}
	t, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
	if err != nil {
		return nil, r.errorf(column, err)
	}
	t = t.UTC()
	return &t, nil
}

func (r row) boolean(column string) (bool, error) {
	s := r.get(column)
	if s == "" {
		return false, r.errorf(column, errors.New("value is required"))
	}
	v, err := cast.ToBoolE(s)
	if err != nil {
		return false, r.errorf(column, err)
	}
	return v, nil
}

func (r row) str(column string) *string {
	s := r.get(column)
	if s == "" {
		return nil
	}
	return &s
}

// readRows reads the header, checks the required columns, and calls fn for
// each data record.
func readRows(rd io.Reader, columns []string, fn func(row) error) error {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ErrEmptyFile
	}
	if err != nil {
		return err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
	}
	for _, col := range columns {
		if _, ok := index[col]; !ok && !optionalColumns[col] {
			return fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line++
		if err := fn(row{line: line, index: index, record: record}); err != nil {
			return err
		}
	}
}

// ReadCustomers parses a customer roster. Customer IDs must be unique.
func ReadCustomers(rd io.Reader) ([]customerdomain.Customer, error) {
	var out []customerdomain.Customer
	seen := make(map[string]int)

	err := readRows(rd, CustomerColumns, func(r row) error {
		since, err := r.date("Customer_Since")
		if err != nil {
			return err
		}
		terms, err := r.integer("Credit_Term_Days")
		if err != nil {
			return err
		}

		rec := customerRecord{
			CustomerID:     r.get("Customer_ID"),
			Name:           r.get("Customer_Name"),
			Industry:       r.get("Industry"),
			Region:         r.get("Region"),
			CreditTermDays: terms,
			RiskCategory:   r.str("Risk_Category"),
		}
		if since != nil {
			rec.CustomerSince = *since
		}
		if err := validate.Struct(rec); err != nil {
			return fmt.Errorf("line %d: %w: %v", r.line, customerdomain.ErrInvalidCustomer, err)
		}
		if first, dup := seen[rec.CustomerID]; dup {
			return fmt.Errorf("line %d: %w: %s first seen on line %d", r.line, customerdomain.ErrDuplicateCustomer, rec.CustomerID, first)
		}
		seen[rec.CustomerID] = r.line

		out = append(out, customerdomain.Customer{
			CustomerID:     rec.CustomerID,
			Name:           rec.Name,
			Industry:       rec.Industry,
			Region:         rec.Region,
			CustomerSince:  rec.CustomerSince,
			CreditTermDays: rec.CreditTermDays,
			RiskCategory:   rec.RiskCategory,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadInvoices parses invoices. Customer IDs are not checked against any
// roster here.
func ReadInvoices(rd io.Reader) ([]invoicedomain.Invoice, error) {
	var out []invoicedomain.Invoice
	seen := make(map[string]int)

	err := readRows(rd, InvoiceColumns, func(r row) error {
		amount, err := r.float("Amount")
		if err != nil {
			return err
		}
		if amount == nil {
			return r.errorf("Amount", errors.New("value is required"))
		}
		invoiceDate, err := r.date("Invoice_Date")
		if err != nil {
			return err
		}
		dueDate, err := r.date("Due_Date")
		if err != nil {
			return err
		}
		paidDate, err := r.date("Paid_Date")
		if err != nil {
			return err
		}
		isPaid, err := r.boolean("Is_Paid")
		if err != nil {
			return err
		}
		delay, err := r.float("Delay_Days")
		if err != nil {
			return err
		}

		rec := invoiceRecord{
			InvoiceID:  r.get("Invoice_ID"),
			CustomerID: r.get("Customer_ID"),
			Amount:     *amount,
			PaidDate:   paidDate,
			IsPaid:     isPaid,
			DelayDays:  delay,
		}
		if invoiceDate != nil {
			rec.InvoiceDate = *invoiceDate
		}
		if dueDate != nil {
			rec.DueDate = *dueDate
		}
		if err := validate.Struct(rec); err != nil {
			return fmt.Errorf("line %d: %w: %v", r.line, invoicedomain.ErrInvalidInvoice, err)
		}
		if first, dup := seen[rec.InvoiceID]; dup {
			return fmt.Errorf("line %d: %w: %s first seen on line %d", r.line, invoicedomain.ErrDuplicateInvoice, rec.InvoiceID, first)
		}
		seen[rec.InvoiceID] = r.line

		out = append(out, invoicedomain.Invoice{
			InvoiceID:   rec.InvoiceID,
			CustomerID:  rec.CustomerID,
			Amount:      rec.Amount,
			InvoiceDate: rec.InvoiceDate,
			DueDate:     rec.DueDate,
			PaidDate:    rec.PaidDate,
			IsPaid:      rec.IsPaid,
			DelayDays:   rec.DelayDays,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
