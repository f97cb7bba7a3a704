// Package domain contains the append-only webhook audit trail. Rows are never
// mutated or deleted, and redeliveries produce additional rows on purpose:
// deduplication belongs to the state machine, the ledger is the raw record.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// WebhookEvent is one received provider delivery.
type WebhookEvent struct {
	ID              snowflake.ID   `gorm:"primaryKey"`
	ProviderEventID string         `gorm:"type:text;not null;index"`
	CompanyID       *snowflake.ID  `gorm:"index"`
	EventType       string         `gorm:"type:text;not null"`
	SubscriptionID  *string        `gorm:"type:text"`
	Payload         datatypes.JSON `gorm:"type:jsonb;not null"`
	ReceivedAt      time.Time      `gorm:"not null"`
}

// TableName sets the database table name.
func (WebhookEvent) TableName() string { return "webhook_events" }

// Entry is the write request for one audit row.
type Entry struct {
	ProviderEventID string
	CompanyID       *snowflake.ID
	EventType       string
	SubscriptionID  *string
	Payload         []byte
}

// Service records webhook deliveries. Record is best-effort from the caller's
// point of view: a failed audit write must never abort event processing.
type Service interface {
	Record(ctx context.Context, entry Entry) error
}
