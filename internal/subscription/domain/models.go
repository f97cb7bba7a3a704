// Package domain contains the durable mapping between provider subscription
// ids and tenants, plus the state machine contract that mutates it.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/timberbase/timberbase/internal/company/domain"
)

var (
	ErrLinkNotFound      = errors.New("subscription_link_not_found")
	ErrUnresolvedProduct = errors.New("unresolved_product")
)

// SubscriptionLink maps a provider subscription id to a company and product.
// Created on first successful activation; never deleted, only updated.
// Providers reuse subscription ids across resubscription, so a link may cycle
// back out of a terminal status into active.
type SubscriptionLink struct {
	SubscriptionID   string                          `gorm:"column:subscription_id;primaryKey"`
	CompanyID        snowflake.ID                    `gorm:"not null;index"`
	ProductID        string                          `gorm:"type:text;not null"`
	Status           companydomain.SubscriptionStatus `gorm:"type:text;not null"`
	CurrentPeriodEnd *time.Time                      `gorm:""`
	CreatedAt        time.Time                       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time                       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (SubscriptionLink) TableName() string { return "subscription_links" }
