// Package domain defines the per-customer feature table and the intermediate
// rows produced while engineering it from raw invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// JoinedRow is one invoice enriched with its owning customer's static attributes.
type JoinedRow struct {
	InvoiceID   string
	CustomerID  string
	Amount      float64
	InvoiceDate time.Time
	DueDate     time.Time
	PaidDate    *time.Time
	IsPaid      bool
	DelayDays   *float64

	Industry      string
	Region        string
	CustomerSince time.Time
}

// FlaggedRow is a JoinedRow with its derived per-invoice flags.
type FlaggedRow struct {
	JoinedRow

	IsLate    bool
	IsDefault bool
	// InvoiceYearMonth is the calendar bucket of the invoice date, e.g. "2024-03".
	InvoiceYearMonth string
}

// CustomerAggregate is the reduction of one customer's flagged rows. It only
// exists for customers with at least one invoice, so every field except
// AvgDelayDays is always defined.
type CustomerAggregate struct {
	CustomerID          string
	TotalInvoices       int
	AvgInvoiceAmount    float64
	LatePaymentRate     float64
	DefaultRate         float64
	AvgDelayDays        *float64
	TotalAmountInvoiced float64
	TotalAmountPaid     float64
}

// CustomerFeatures is one row of the engineered feature table. Nil pointers
// are undefined values and must never be read as zero.
type CustomerFeatures struct {
	CustomerID     string       `gorm:"column:customer_id;primaryKey;type:text" json:"customer_id"`
	BuildID        snowflake.ID `gorm:"column:build_id;not null;index" json:"build_id"`
	CustomerName   string       `gorm:"column:customer_name;type:text" json:"customer_name,omitempty"`
	Industry       string       `gorm:"column:industry;type:text;not null;index" json:"industry"`
	Region         string       `gorm:"column:region;type:text;not null;index" json:"region"`
	CustomerSince  time.Time    `gorm:"column:customer_since;not null" json:"customer_since"`
	CreditTermDays *int         `gorm:"column:credit_term_days" json:"credit_term_days"`
	RiskCategory   *string      `gorm:"column:risk_category;type:text" json:"risk_category"`

	TotalInvoices       int      `gorm:"column:total_invoices;not null" json:"total_invoices"`
	AvgInvoiceAmount    *float64 `gorm:"column:avg_invoice_amount" json:"avg_invoice_amount"`
	LatePaymentRate     *float64 `gorm:"column:late_payment_rate" json:"late_payment_rate"`
	DefaultRate         *float64 `gorm:"column:default_rate" json:"default_rate"`
	AvgDelayDays        *float64 `gorm:"column:avg_delay_days" json:"avg_delay_days"`
	TotalAmountInvoiced float64  `gorm:"column:total_amount_invoiced;not null" json:"total_amount_invoiced"`
	TotalAmountPaid     float64  `gorm:"column:total_amount_paid;not null" json:"total_amount_paid"`

	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName sets the database table name.
func (CustomerFeatures) TableName() string { return "customer_features" }

// ListFilter narrows the feature table. Empty slices match everything.
type ListFilter struct {
	CustomerIDs []string
	Industries  []string
	Regions     []string
}

func (f ListFilter) IsEmpty() bool {
	return len(f.CustomerIDs) == 0 && len(f.Industries) == 0 && len(f.Regions) == 0
}

func (f ListFilter) Match(row CustomerFeatures) bool {
	return matchAny(f.CustomerIDs, row.CustomerID) &&
		matchAny(f.Industries, row.Industry) &&
		matchAny(f.Regions, row.Region)
}

func matchAny(values []string, v string) bool {
	if len(values) == 0 {
		return true
	}
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
