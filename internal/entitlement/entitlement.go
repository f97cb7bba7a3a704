// Package entitlement is the single access gate for premium features. Every
// tenant-scoped mutation path checks this one predicate instead of ad hoc
// plan or status comparisons.
package entitlement

import (
	"errors"

	companydomain "github.com/timberbase/timberbase/internal/company/domain"
)

// ErrSubscriptionRequired signals that the tenant needs an active paid
// subscription. It is distinct from authorization failures so callers can
// render an upgrade prompt instead of permission-denied.
var ErrSubscriptionRequired = errors.New("subscription_required")

// IsPremiumActive returns true only for a paid plan with an active
// subscription. A canceled tenant keeps plan=paid and is gated here by
// status alone.
func IsPremiumActive(plan companydomain.Plan, status companydomain.SubscriptionStatus) bool {
	return plan == companydomain.PlanPaid && status == companydomain.StatusActive
}

// Check returns ErrSubscriptionRequired unless the pair passes the gate.
func Check(plan companydomain.Plan, status companydomain.SubscriptionStatus) error {
	if !IsPremiumActive(plan, status) {
		return ErrSubscriptionRequired
	}
	return nil
}
