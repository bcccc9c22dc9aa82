// Package domain holds the customer roster model.
package domain

import (
	"errors"
	"time"
)

// Customer is one row of the immutable customer roster.
type Customer struct {
	CustomerID     string    `gorm:"column:customer_id;primaryKey;type:text" json:"customer_id"`
	Name           string    `gorm:"column:name;type:text" json:"name,omitempty"`
	Industry       string    `gorm:"column:industry;type:text;not null;index" json:"industry"`
	Region         string    `gorm:"column:region;type:text;not null;index" json:"region"`
	CustomerSince  time.Time `gorm:"column:customer_since;not null" json:"customer_since"`
	CreditTermDays *int      `gorm:"column:credit_term_days" json:"credit_term_days,omitempty"`
	// RiskCategory is the ground-truth label source used for training.
	RiskCategory *string   `gorm:"column:risk_category;type:text" json:"risk_category,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

var (
	ErrDuplicateCustomer = errors.New("duplicate_customer")
	ErrInvalidCustomer   = errors.New("invalid_customer")
)
