package repository

import (
	"context"

	ledgerdomain "github.com/timberbase/timberbase/internal/ledger/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *ledgerdomain.WebhookEvent) error
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *ledgerdomain.WebhookEvent) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO webhook_events (
			id, provider_event_id, company_id, event_type, subscription_id, payload, received_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.ProviderEventID,
		event.CompanyID,
		event.EventType,
		event.SubscriptionID,
		event.Payload,
		event.ReceivedAt,
	).Error
}
