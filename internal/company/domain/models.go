// Package domain contains the tenant (company) model. Billing fields on the
// company are mutated only by the subscription state machine and the explicit
// administrative downgrade.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Plan distinguishes tenants that have had at least one successful activation
// from those that never paid. It is never reset by cancellation; gating relies
// on SubscriptionStatus instead so billing history stays distinguishable.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPaid Plan = "paid"
)

// SubscriptionStatus is the tenant-level mirror of the provider subscription
// lifecycle.
type SubscriptionStatus string

const (
	StatusIncomplete SubscriptionStatus = "incomplete"
	StatusActive     SubscriptionStatus = "active"
	StatusPastDue    SubscriptionStatus = "past_due"
	StatusCanceled   SubscriptionStatus = "canceled"
	StatusExpired    SubscriptionStatus = "expired"
)

// Company is a billing tenant.
type Company struct {
	ID                 snowflake.ID       `gorm:"primaryKey"`
	Name               string             `gorm:"type:text;not null"`
	BillingEmail       string             `gorm:"type:text;not null;uniqueIndex:ux_companies_billing_email"`
	Plan               Plan               `gorm:"type:text;not null;default:free"`
	BillingInterval    *string            `gorm:"type:text"`
	SubscriptionStatus SubscriptionStatus `gorm:"type:text;not null;default:incomplete"`
	CurrentPeriodEnd   *time.Time         `gorm:""`
	CreatedAt          time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Company) TableName() string { return "companies" }
