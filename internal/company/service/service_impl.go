package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/timberbase/timberbase/internal/clock"
	companydomain "github.com/timberbase/timberbase/internal/company/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  companydomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  companydomain.Repository
}

func NewService(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("company.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*companydomain.Company, error) {
	return s.repo.FindByID(ctx, s.db, id)
}

// Downgrade is the administrative reset back to the free plan. It is the only
// operation that moves plan from paid to free; provider events never do.
func (s *Service) Downgrade(ctx context.Context, id snowflake.ID) error {
	now := s.clock.Now()
	return s.db.Transaction(func(tx *gorm.DB) error {
		company, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		update := companydomain.BillingUpdate{
			Plan:               companydomain.PlanFree,
			BillingInterval:    nil,
			SubscriptionStatus: companydomain.StatusCanceled,
			CurrentPeriodEnd:   nil,
		}
		if err := s.repo.UpdateBilling(ctx, tx, company.ID, update, now); err != nil {
			return err
		}

		s.log.Info("company downgraded",
			zap.String("company_id", company.ID.String()),
		)
		return nil
	})
}
