package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/riskscore/internal/clock"
	customerdomain "github.com/railzwaylabs/riskscore/internal/customer/domain"
	customerrepo "github.com/railzwaylabs/riskscore/internal/customer/repository"
	"github.com/railzwaylabs/riskscore/internal/feature/domain"
	featurerepo "github.com/railzwaylabs/riskscore/internal/feature/repository"
	"github.com/railzwaylabs/riskscore/internal/feature/service"
	invoicedomain "github.com/railzwaylabs/riskscore/internal/invoice/domain"
	invoicerepo "github.com/railzwaylabs/riskscore/internal/invoice/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memoryCache struct {
	rows        []domain.CustomerFeatures
	loaded      bool
	invalidated int
}

func (c *memoryCache) Load(context.Context) ([]domain.CustomerFeatures, bool, error) {
	if !c.loaded {
		return nil, false, nil
	}
	return append([]domain.CustomerFeatures(nil), c.rows...), true, nil
}

func (c *memoryCache) Store(_ context.Context, rows []domain.CustomerFeatures) error {
	c.rows = append([]domain.CustomerFeatures(nil), rows...)
	c.loaded = true
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.rows = nil
	c.loaded = false
	c.invalidated++
	return nil
}

func setupService(t *testing.T, cache domain.Cache) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&customerdomain.Customer{}, &invoicedomain.Invoice{}, &domain.CustomerFeatures{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := service.New(service.Params{
		DB:           db,
		Log:          zap.NewNop(),
		Clock:        clock.FixedClock{At: since},
		GenID:        node,
		Repo:         featurerepo.Provide(),
		CustomerRepo: customerrepo.Provide(),
		InvoiceRepo:  invoicerepo.Provide(),
		Cache:        cache,
	})
	return svc, db
}

func seedSnapshot(t *testing.T, db *gorm.DB) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, customerrepo.Provide().ReplaceAll(ctx, db, []customerdomain.Customer{
		customer("C1", "Retail", "North"),
		customer("C2", "Healthcare", "East"),
	}))
	invoices := append(c1Invoices(), invoice("I-9", "C404", 10, true, f64(1)))
	require.NoError(t, invoicerepo.Provide().ReplaceAll(ctx, db, invoices))
}

func TestServiceBuildPersistsFeatureTable(t *testing.T) {
	svc, db := setupService(t, nil)
	seedSnapshot(t, db)

	result, err := svc.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Customers)
	assert.Equal(t, 4, result.Invoices)
	assert.Equal(t, 3, result.JoinedInvoices)
	assert.Equal(t, 1, result.DroppedInvoices)
	assert.Equal(t, 1, result.ZeroInvoiceCustomers)
	assert.NotEmpty(t, result.BuildID)

	rows, err := svc.List(context.Background(), domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "C1", rows[0].CustomerID)
	require.NotNil(t, rows[0].LatePaymentRate)
	assert.InDelta(t, 1.0/3.0, *rows[0].LatePaymentRate, 1e-12)
	assert.Nil(t, rows[1].LatePaymentRate)

	filtered, err := svc.List(context.Background(), domain.ListFilter{Industries: []string{"Healthcare"}})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "C2", filtered[0].CustomerID)
}

func TestServiceBuildReplacesPreviousBuild(t *testing.T) {
	svc, db := setupService(t, nil)
	seedSnapshot(t, db)
	ctx := context.Background()

	_, err := svc.Build(ctx)
	require.NoError(t, err)

	require.NoError(t, customerrepo.Provide().ReplaceAll(ctx, db, []customerdomain.Customer{customer("C1", "Retail", "North")}))
	_, err = svc.Build(ctx)
	require.NoError(t, err)

	count, err := featurerepo.Provide().Count(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestServiceBuildEmptyRoster(t *testing.T) {
	svc, _ := setupService(t, nil)

	_, err := svc.Build(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyRoster)
}

func TestServiceUsesAndInvalidatesCache(t *testing.T) {
	cache := &memoryCache{}
	svc, db := setupService(t, cache)
	seedSnapshot(t, db)
	ctx := context.Background()

	_, err := svc.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	_, err = svc.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.True(t, cache.loaded)

	// Served from cache even after the table is cleared.
	require.NoError(t, db.Exec(`DELETE FROM customer_features`).Error)
	rows, err := svc.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = svc.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.invalidated)
	assert.False(t, cache.loaded)
}

func TestServiceExport(t *testing.T) {
	svc, db := setupService(t, nil)
	seedSnapshot(t, db)
	ctx := context.Background()

	_, err := svc.Build(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := svc.Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Customer_ID", records[0][0])
	assert.Equal(t, "Total_Amount_Paid", records[0][13])

	c1 := records[1]
	assert.Equal(t, "C1", c1[0])
	assert.Equal(t, "2020-01-15", c1[4])
	assert.Equal(t, "3", c1[7])
	assert.Equal(t, "350", c1[12])
	assert.Equal(t, "300", c1[13])

	c2 := records[2]
	assert.Equal(t, "0", c2[7])
	assert.Equal(t, "", c2[9], "late payment rate is undefined")
	assert.Equal(t, "0", c2[11], "avg delay is filled")
}
