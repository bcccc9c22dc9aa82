package service

import (
	"context"
	"fmt"
	"io"

	"github.com/bwmarrin/snowflake"
	"github.com/railzwaylabs/riskscore/internal/clock"
	customerdomain "github.com/railzwaylabs/riskscore/internal/customer/domain"
	"github.com/railzwaylabs/riskscore/internal/feature/domain"
	invoicedomain "github.com/railzwaylabs/riskscore/internal/invoice/domain"
	"github.com/railzwaylabs/riskscore/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/railzwaylabs/riskscore/internal/feature")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	GenID        *snowflake.Node
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	InvoiceRepo  invoicedomain.Repository
	Cache        domain.Cache          `optional:"true"`
	Metrics      *observability.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	genID        *snowflake.Node
	repo         domain.Repository
	customerRepo customerdomain.Repository
	invoiceRepo  invoicedomain.Repository
	cache        domain.Cache
	metrics      *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("feature.service"),
		clock:        p.Clock,
		genID:        p.GenID,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		invoiceRepo:  p.InvoiceRepo,
		cache:        p.Cache,
		metrics:      p.Metrics,
	}
}

func (s *Service) Build(ctx context.Context) (*domain.BuildResult, error) {
	ctx, span := tracer.Start(ctx, "feature.Build")
	defer span.End()

	customers, err := s.customerRepo.List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	if len(customers) == 0 {
		return nil, domain.ErrEmptyRoster
	}

	invoices, err := s.invoiceRepo.List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	buildID := s.genID.Generate()
	result, err := RunPipeline(customers, invoices, buildID, s.clock.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.ReplaceAll(ctx, tx, result.Rows)
	}); err != nil {
		return nil, fmt.Errorf("persist feature table: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.Warn("failed to invalidate feature cache", zap.Error(err))
		}
	}

	if result.DroppedInvoices > 0 {
		s.log.Warn("invoices dropped by customer join",
			zap.Int("dropped", result.DroppedInvoices),
			zap.String("reason", domain.ErrJoinMismatch.Error()),
		)
	}
	s.metrics.ObserveFeatureBuild(len(result.Rows), result.DroppedInvoices)

	span.SetAttributes(
		attribute.Int("feature.customers", len(customers)),
		attribute.Int("feature.invoices", len(invoices)),
		attribute.Int("feature.dropped_invoices", result.DroppedInvoices),
	)
	s.log.Info("feature table built",
		zap.String("build_id", buildID.String()),
		zap.Int("customers", len(customers)),
		zap.Int("invoices", len(invoices)),
		zap.Int("zero_invoice_customers", result.ZeroInvoiceCustomers),
	)

	return &domain.BuildResult{
		BuildID:              buildID.String(),
		Customers:            len(customers),
		Invoices:             len(invoices),
		JoinedInvoices:       result.JoinedInvoices,
		DroppedInvoices:      result.DroppedInvoices,
		ZeroInvoiceCustomers: result.ZeroInvoiceCustomers,
	}, nil
}

// List returns a private copy of the matching feature rows.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) ([]domain.CustomerFeatures, error) {
	rows, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	if filter.IsEmpty() {
		return rows, nil
	}

	out := make([]domain.CustomerFeatures, 0, len(rows))
	for _, row := range rows {
		if filter.Match(row) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	rows, err := s.loadAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := WriteCSV(w, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *Service) loadAll(ctx context.Context) ([]domain.CustomerFeatures, error) {
	if s.cache != nil {
		rows, ok, err := s.cache.Load(ctx)
		if err != nil {
			s.log.Warn("feature cache read failed", zap.Error(err))
		} else if ok {
			return rows, nil
		}
	}

	rows, err := s.repo.List(ctx, s.db, domain.ListFilter{})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Store(ctx, rows); err != nil {
			s.log.Warn("feature cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}
