package domain

import (
	"context"
	"time"

	companydomain "github.com/timberbase/timberbase/internal/company/domain"
	"gorm.io/gorm"
)

type Repository interface {
	FindBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string) (*SubscriptionLink, error)
	FindBySubscriptionIDForUpdate(ctx context.Context, db *gorm.DB, subscriptionID string) (*SubscriptionLink, error)
	Insert(ctx context.Context, db *gorm.DB, link *SubscriptionLink) error
	Update(ctx context.Context, db *gorm.DB, link *SubscriptionLink) error
	UpdateStatus(ctx context.Context, db *gorm.DB, subscriptionID string, status companydomain.SubscriptionStatus, now time.Time) error
}
