package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("company_not_found")

// BillingUpdate is the full set of billing columns written by an activation.
type BillingUpdate struct {
	Plan               Plan
	BillingInterval    *string
	SubscriptionStatus SubscriptionStatus
	CurrentPeriodEnd   *time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, company *Company) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Company, error)
	FindByBillingEmail(ctx context.Context, db *gorm.DB, email string) (*Company, error)
	UpdateBilling(ctx context.Context, db *gorm.DB, id snowflake.ID, update BillingUpdate, now time.Time) error
	UpdateSubscriptionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status SubscriptionStatus, now time.Time) error
}
