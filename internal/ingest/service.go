// Package ingest loads customer and invoice snapshots from CSV into storage.
package ingest

import (
	"context"
	"fmt"
	"io"

	"github.com/railzwaylabs/riskscore/internal/clock"
	customerdomain "github.com/railzwaylabs/riskscore/internal/customer/domain"
	invoicedomain "github.com/railzwaylabs/riskscore/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("ingest.service",
	fx.Provide(NewService),
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	CustomerRepo customerdomain.Repository
	InvoiceRepo  invoicedomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	customerRepo customerdomain.Repository
	invoiceRepo  invoicedomain.Repository
}

type Result struct {
	Customers int `json:"customers"`
	Invoices  int `json:"invoices"`
	// OrphanInvoices reference a customer missing from the roster. They are
	// stored and later dropped by the feature join.
	OrphanInvoices int `json:"orphan_invoices"`
}

func NewService(p Params) *Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("ingest.service"),
		clock:        p.Clock,
		customerRepo: p.CustomerRepo,
		invoiceRepo:  p.InvoiceRepo,
	}
}

// ImportCSV parses both files fully before touching storage.
func (s *Service) ImportCSV(ctx context.Context, customersCSV, invoicesCSV io.Reader) (*Result, error) {
	customers, err := ReadCustomers(customersCSV)
	if err != nil {
		return nil, fmt.Errorf("customers: %w", err)
	}
	invoices, err := ReadInvoices(invoicesCSV)
	if err != nil {
		return nil, fmt.Errorf("invoices: %w", err)
	}
	return s.Replace(ctx, customers, invoices)
}

// Replace swaps the stored snapshot for the given one in a single transaction.
func (s *Service) Replace(ctx context.Context, customers []customerdomain.Customer, invoices []invoicedomain.Invoice) (*Result, error) {
	now := s.clock.Now(ctx)
	roster := make(map[string]struct{}, len(customers))
	for i := range customers {
		customers[i].CreatedAt = now
		roster[customers[i].CustomerID] = struct{}{}
	}
	orphans := 0
	for i := range invoices {
		invoices[i].CreatedAt = now
		if _, ok := roster[invoices[i].CustomerID]; !ok {
			orphans++
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.customerRepo.ReplaceAll(ctx, tx, customers); err != nil {
			return fmt.Errorf("replace customers: %w", err)
		}
		if err := s.invoiceRepo.ReplaceAll(ctx, tx, invoices); err != nil {
			return fmt.Errorf("replace invoices: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if orphans > 0 {
		s.log.Warn("imported invoices without a matching customer", zap.Int("orphan_invoices", orphans))
	}
	s.log.Info("snapshot imported",
		zap.Int("customers", len(customers)),
		zap.Int("invoices", len(invoices)),
	)
	return &Result{Customers: len(customers), Invoices: len(invoices), OrphanInvoices: orphans}, nil
}
