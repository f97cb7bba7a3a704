package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/timberbase/timberbase/internal/clock"
	companydomain "github.com/timberbase/timberbase/internal/company/domain"
	"github.com/timberbase/timberbase/internal/config"
	subscriptiondomain "github.com/timberbase/timberbase/internal/subscription/domain"
	"github.com/timberbase/timberbase/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Clock       clock.Clock
	Catalog     *config.PlanCatalog
	Repo        subscriptiondomain.Repository
	CompanyRepo companydomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	clock       clock.Clock
	catalog     *config.PlanCatalog
	repo        subscriptiondomain.Repository
	companyRepo companydomain.Repository
}

func NewService(p Params) subscriptiondomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("subscription.service"),
		clock:       p.Clock,
		catalog:     p.Catalog,
		repo:        p.Repo,
		companyRepo: p.CompanyRepo,
	}
}

// Activate applies a successful checkout or recurring payment. It upserts the
// subscription link and promotes the company to the paid plan. Re-activation
// of a canceled or expired subscription id is a normal path: providers reuse
// ids across resubscription.
func (s *Service) Activate(ctx context.Context, companyID snowflake.ID, activation subscriptiondomain.Activation) error {
	subscriptionID := strings.TrimSpace(activation.SubscriptionID)
	if subscriptionID == "" {
		return subscriptiondomain.ErrLinkNotFound
	}
	productID := strings.TrimSpace(activation.ProductID)
	if productID == "" {
		return subscriptiondomain.ErrUnresolvedProduct
	}

	now := s.clock.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		link, err := s.repo.FindBySubscriptionIDForUpdate(ctx, tx, subscriptionID)
		if err != nil && err != subscriptiondomain.ErrLinkNotFound {
			return err
		}

		company, err := s.companyRepo.FindByIDForUpdate(ctx, tx, companyID)
		if err != nil {
			return err
		}

		periodEnd := activation.PeriodEnd
		if link != nil {
			periodEnd = latestPeriodEnd(link.CurrentPeriodEnd, activation.PeriodEnd)
		}

		if link == nil {
			link = &subscriptiondomain.SubscriptionLink{
				SubscriptionID:   subscriptionID,
				CompanyID:        companyID,
				ProductID:        productID,
				Status:           companydomain.StatusActive,
				CurrentPeriodEnd: periodEnd,
				CreatedAt:        now,
				UpdatedAt:        now,
			}
			if err := s.repo.Insert(ctx, tx, link); err != nil {
				// a concurrent first-activation won the insert; fall back to update
				if !db.IsDuplicateKeyErr(err) {
					return err
				}
				existing, findErr := s.repo.FindBySubscriptionIDForUpdate(ctx, tx, subscriptionID)
				if findErr != nil {
					return findErr
				}
				link = existing
				link.ProductID = productID
				link.Status = companydomain.StatusActive
				link.CurrentPeriodEnd = latestPeriodEnd(existing.CurrentPeriodEnd, activation.PeriodEnd)
				link.UpdatedAt = now
				if err := s.repo.Update(ctx, tx, link); err != nil {
					return err
				}
			}
		} else {
			link.CompanyID = companyID
			link.ProductID = productID
			link.Status = companydomain.StatusActive
			link.CurrentPeriodEnd = periodEnd
			link.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, link); err != nil {
				return err
			}
		}

		interval := company.BillingInterval
		if mapped, ok := s.catalog.Interval(productID); ok {
			interval = &mapped
		} else {
			s.log.Warn("product id missing from plan catalog",
				zap.String("product_id", productID),
				zap.String("subscription_id", subscriptionID),
			)
		}

		update := companydomain.BillingUpdate{
			Plan:               companydomain.PlanPaid,
			BillingInterval:    interval,
			SubscriptionStatus: companydomain.StatusActive,
			CurrentPeriodEnd:   latestPeriodEnd(company.CurrentPeriodEnd, activation.PeriodEnd),
		}
		if err := s.companyRepo.UpdateBilling(ctx, tx, companyID, update, now); err != nil {
			return err
		}

		s.log.Info("subscription activated",
			zap.String("company_id", companyID.String()),
			zap.String("subscription_id", subscriptionID),
			zap.String("product_id", productID),
		)
		return nil
	})
}

// MarkPastDue handles an expired payment request. A subscription that never
// activated has no link and cannot become past due; that delivery is a no-op.
func (s *Service) MarkPastDue(ctx context.Context, companyID snowflake.ID, subscriptionID string) error {
	now := s.clock.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		link, err := s.repo.FindBySubscriptionIDForUpdate(ctx, tx, subscriptionID)
		if err != nil {
			if err == subscriptiondomain.ErrLinkNotFound {
				s.log.Info("past_due event for unknown subscription, skipping",
					zap.String("subscription_id", subscriptionID),
				)
				return nil
			}
			return err
		}

		if err := s.repo.UpdateStatus(ctx, tx, link.SubscriptionID, companydomain.StatusPastDue, now); err != nil {
			return err
		}
		return s.companyRepo.UpdateSubscriptionStatus(ctx, tx, link.CompanyID, companydomain.StatusPastDue, now)
	})
}

func (s *Service) Cancel(ctx context.Context, companyID snowflake.ID, subscriptionID string) error {
	return s.terminate(ctx, companyID, subscriptionID, companydomain.StatusCanceled)
}

func (s *Service) Expire(ctx context.Context, companyID snowflake.ID, subscriptionID string) error {
	return s.terminate(ctx, companyID, subscriptionID, companydomain.StatusExpired)
}

// terminate marks the subscription canceled or expired. The plan column is
// deliberately left untouched: a paid-then-canceled tenant stays plan=paid and
// is gated by status, keeping billing history distinct from never-paid.
func (s *Service) terminate(ctx context.Context, companyID snowflake.ID, subscriptionID string, status companydomain.SubscriptionStatus) error {
	now := s.clock.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		link, err := s.repo.FindBySubscriptionIDForUpdate(ctx, tx, subscriptionID)
		if err != nil && err != subscriptiondomain.ErrLinkNotFound {
			return err
		}
		if link != nil {
			if err := s.repo.UpdateStatus(ctx, tx, link.SubscriptionID, status, now); err != nil {
				return err
			}
		}
		return s.companyRepo.UpdateSubscriptionStatus(ctx, tx, companyID, status, now)
	})
}

// latestPeriodEnd keeps the stored period end monotonically advancing: a
// redelivered or stale activation with an equal-or-earlier period end is
// accepted for status purposes but never moves the date backward.
func latestPeriodEnd(stored, incoming *time.Time) *time.Time {
	if incoming == nil {
		return stored
	}
	if stored == nil || incoming.After(*stored) {
		return incoming
	}
	return stored
}
