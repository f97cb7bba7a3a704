package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Activation carries everything a successful checkout or recurring payment
// needs to (re)activate a subscription.
type Activation struct {
	SubscriptionID string
	ProductID      string
	PeriodEnd      *time.Time
}

// Service is the subscription state machine. Every method is a single atomic
// read-modify-write; concurrent deliveries for the same subscription id
// serialize on the row lock inside the transaction.
type Service interface {
	Activate(ctx context.Context, companyID snowflake.ID, activation Activation) error
	MarkPastDue(ctx context.Context, companyID snowflake.ID, subscriptionID string) error
	Cancel(ctx context.Context, companyID snowflake.ID, subscriptionID string) error
	Expire(ctx context.Context, companyID snowflake.ID, subscriptionID string) error
}
