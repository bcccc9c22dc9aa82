// Package domain holds the raw invoice model.
package domain

import (
	"errors"
	"time"
)

// Invoice is a raw invoice record. CustomerID is a soft reference: invoices
// whose customer is missing from the roster are kept in storage and dropped
// by the feature pipeline's join.
type Invoice struct {
	InvoiceID   string     `gorm:"column:invoice_id;primaryKey;type:text" json:"invoice_id"`
	CustomerID  string     `gorm:"column:customer_id;type:text;not null;index" json:"customer_id"`
	Amount      float64    `gorm:"column:amount;not null" json:"amount"`
	InvoiceDate time.Time  `gorm:"column:invoice_date;not null" json:"invoice_date"`
	DueDate     time.Time  `gorm:"column:due_date;not null" json:"due_date"`
	PaidDate    *time.Time `gorm:"column:paid_date" json:"paid_date,omitempty"`
	IsPaid      bool       `gorm:"column:is_paid;not null" json:"is_paid"`
	// DelayDays is nil when the delay is unknown, e.g. the invoice is still open.
	DelayDays *float64  `gorm:"column:delay_days" json:"delay_days,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

var (
	ErrDuplicateInvoice = errors.New("duplicate_invoice")
	ErrInvalidInvoice   = errors.New("invalid_invoice")
)
