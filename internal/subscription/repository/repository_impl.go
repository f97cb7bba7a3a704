package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	companydomain "github.com/timberbase/timberbase/internal/company/domain"
	subscriptiondomain "github.com/timberbase/timberbase/internal/subscription/domain"
	pkgdb "github.com/timberbase/timberbase/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) FindBySubscriptionID(ctx context.Context, db *gorm.DB, subscriptionID string) (*subscriptiondomain.SubscriptionLink, error) {
	return r.find(ctx, db, subscriptionID, false)
}

func (r *repo) FindBySubscriptionIDForUpdate(ctx context.Context, db *gorm.DB, subscriptionID string) (*subscriptiondomain.SubscriptionLink, error) {
	return r.find(ctx, db, subscriptionID, true)
}

func (r *repo) find(ctx context.Context, db *gorm.DB, subscriptionID string, forUpdate bool) (*subscriptiondomain.SubscriptionLink, error) {
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return nil, subscriptiondomain.ErrLinkNotFound
	}

	query := db.WithContext(ctx)
	if forUpdate {
		query = pkgdb.ForUpdate(query)
	}

	var link subscriptiondomain.SubscriptionLink
	err := query.Where("subscription_id = ?", subscriptionID).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscriptiondomain.ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, link *subscriptiondomain.SubscriptionLink) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscription_links (
			subscription_id, company_id, product_id, status, current_period_end, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		link.SubscriptionID,
		link.CompanyID,
		link.ProductID,
		link.Status,
		link.CurrentPeriodEnd,
		link.CreatedAt,
		link.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, link *subscriptiondomain.SubscriptionLink) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscription_links
		 SET company_id = ?, product_id = ?, status = ?, current_period_end = ?, updated_at = ?
		 WHERE subscription_id = ?`,
		link.CompanyID,
		link.ProductID,
		link.Status,
		link.CurrentPeriodEnd,
		link.UpdatedAt,
		link.SubscriptionID,
	).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, subscriptionID string, status companydomain.SubscriptionStatus, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscription_links SET status = ?, updated_at = ? WHERE subscription_id = ?`,
		status,
		now,
		subscriptionID,
	).Error
}
