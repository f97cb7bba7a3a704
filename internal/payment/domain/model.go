// Package domain defines the provider-agnostic webhook event shape and the
// error taxonomy for the reconciliation flow.
package domain

import (
	"errors"
	"time"
)

// EventKind is the normalized classification of a provider delivery.
type EventKind string

const (
	KindActivation    EventKind = "activation"
	KindPaymentFailed EventKind = "payment_failed"
	KindCanceled      EventKind = "canceled"
	KindExpired       EventKind = "expired"
	// KindUnknown deliveries are ledgered for audit but never acted on.
	KindUnknown EventKind = "unknown"
)

// MappedEvent is the internal representation of one provider webhook event.
// It is ephemeral: it exists only for the duration of one delivery.
type MappedEvent struct {
	ProviderEventID string
	RawType         string
	Kind            EventKind
	SubscriptionID  string
	ProductID       string
	BuyerEmail      string
	PeriodEnd       *time.Time
}

var (
	// ErrInvalidToken means the shared-secret header check failed. Retrying
	// cannot help; it indicates misconfiguration on one side.
	ErrInvalidToken = errors.New("invalid_webhook_token")

	// ErrMalformedPayload means the body lacks a top-level event type or data
	// object. The delivery is not ledgered.
	ErrMalformedPayload = errors.New("malformed_payload")

	// ErrUnresolvedSubscription means no subscription id could be extracted.
	ErrUnresolvedSubscription = errors.New("unresolved_subscription")

	// ErrUnresolvedTenant means neither the subscription link nor the buyer
	// email matched a company. The provider will retry; nothing was mutated.
	ErrUnresolvedTenant = errors.New("unresolved_tenant")

	// ErrTransitionPersistence wraps a failed state transition write so the
	// provider retries the delivery.
	ErrTransitionPersistence = errors.New("transition_persistence_failed")
)
