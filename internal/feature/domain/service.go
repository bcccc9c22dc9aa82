package domain

import (
	"context"
	"errors"
	"io"
)

type Service interface {
	// Build recomputes the feature table from the current customer and
	// invoice snapshot and persists it.
	Build(ctx context.Context) (*BuildResult, error)
	List(ctx context.Context, filter ListFilter) ([]CustomerFeatures, error)
	// Export writes the current feature table as CSV and returns the row count.
	Export(ctx context.Context, w io.Writer) (int, error)
}

type BuildResult struct {
	BuildID              string `json:"build_id"`
	Customers            int    `json:"customers"`
	Invoices             int    `json:"invoices"`
	JoinedInvoices       int    `json:"joined_invoices"`
	DroppedInvoices      int    `json:"dropped_invoices"`
	ZeroInvoiceCustomers int    `json:"zero_invoice_customers"`
}

var (
	// ErrJoinMismatch describes an invoice whose customer is not in the
	// roster. It is counted and logged, never returned from a build.
	ErrJoinMismatch = errors.New("join_mismatch")
	ErrEmptyRoster  = errors.New("empty_roster")
)
