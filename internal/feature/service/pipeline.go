package service

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/railzwaylabs/riskscore/internal/customer/domain"
	"github.com/railzwaylabs/riskscore/internal/feature/domain"
	invoicedomain "github.com/railzwaylabs/riskscore/internal/invoice/domain"
)

type PipelineResult struct {
	Rows                 []domain.CustomerFeatures
	JoinedInvoices       int
	DroppedInvoices      int
	ZeroInvoiceCustomers int
}

// RunPipeline engineers the feature table from one customer/invoice snapshot.
// It is a pure function of its inputs.
func RunPipeline(customers []customerdomain.Customer, invoices []invoicedomain.Invoice, buildID snowflake.ID, now time.Time) (PipelineResult, error) {
	seen := make(map[string]struct{}, len(customers))
	for _, c := range customers {
		if _, dup := seen[c.CustomerID]; dup {
			return PipelineResult{}, fmt.Errorf("%w: %s", customerdomain.ErrDuplicateCustomer, c.CustomerID)
		}
		seen[c.CustomerID] = struct{}{}
	}

	joined, dropped := Join(invoices, customers)
	aggregates := Aggregate(Flag(joined))
	rows := Assemble(customers, aggregates, buildID, now)

	return PipelineResult{
		Rows:                 rows,
		JoinedInvoices:       len(joined),
		DroppedInvoices:      dropped,
		ZeroInvoiceCustomers: len(customers) - len(aggregates),
	}, nil
}
