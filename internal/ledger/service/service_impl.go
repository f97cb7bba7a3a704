package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/timberbase/timberbase/internal/clock"
	ledgerdomain "github.com/timberbase/timberbase/internal/ledger/domain"
	"github.com/timberbase/timberbase/internal/ledger/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  repository.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  repository.Repository
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("ledger.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, entry ledgerdomain.Entry) error {
	eventType := strings.TrimSpace(entry.EventType)
	if eventType == "" {
		eventType = "unknown"
	}

	event := ledgerdomain.WebhookEvent{
		ID:              s.genID.Generate(),
		ProviderEventID: strings.TrimSpace(entry.ProviderEventID),
		CompanyID:       entry.CompanyID,
		EventType:       eventType,
		SubscriptionID:  entry.SubscriptionID,
		Payload:         datatypes.JSON(entry.Payload),
		ReceivedAt:      s.clock.Now(),
	}

	return s.repo.Insert(ctx, s.db, &event)
}
