package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/timberbase/timberbase/internal/company/domain"
	pkgdb "github.com/timberbase/timberbase/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() companydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, company *companydomain.Company) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO companies (
			id, name, billing_email, plan, billing_interval, subscription_status,
			current_period_end, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		company.ID,
		company.Name,
		company.BillingEmail,
		company.Plan,
		company.BillingInterval,
		company.SubscriptionStatus,
		company.CurrentPeriodEnd,
		company.CreatedAt,
		company.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*companydomain.Company, error) {
	var company companydomain.Company
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, companydomain.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*companydomain.Company, error) {
	var company companydomain.Company
	err := pkgdb.ForUpdate(db.WithContext(ctx)).
		Where("id = ?", id).
		First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, companydomain.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

func (r *repo) FindByBillingEmail(ctx context.Context, db *gorm.DB, email string) (*companydomain.Company, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, companydomain.ErrNotFound
	}

	var company companydomain.Company
	err := db.WithContext(ctx).
		Where("LOWER(billing_email) = ?", email).
		First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, companydomain.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

func (r *repo) UpdateBilling(ctx context.Context, db *gorm.DB, id snowflake.ID, update companydomain.BillingUpdate, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE companies
		 SET plan = ?, billing_interval = ?, subscription_status = ?, current_period_end = ?, updated_at = ?
		 WHERE id = ?`,
		update.Plan,
		update.BillingInterval,
		update.SubscriptionStatus,
		update.CurrentPeriodEnd,
		now,
		id,
	).Error
}

func (r *repo) UpdateSubscriptionStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status companydomain.SubscriptionStatus, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE companies SET subscription_status = ?, updated_at = ? WHERE id = ?`,
		status,
		now,
		id,
	).Error
}
