package entitlement

import (
	"testing"

	"github.com/stretchr/testify/require"
	companydomain "github.com/timberbase/timberbase/internal/company/domain"
)

func TestIsPremiumActiveTruthTable(t *testing.T) {
	plans := []companydomain.Plan{companydomain.PlanFree, companydomain.PlanPaid}
	statuses := []companydomain.SubscriptionStatus{
		companydomain.StatusIncomplete,
		companydomain.StatusActive,
		companydomain.StatusPastDue,
		companydomain.StatusCanceled,
		companydomain.StatusExpired,
	}

	for _, plan := range plans {
		for _, status := range statuses {
			want := plan == companydomain.PlanPaid && status == companydomain.StatusActive
			got := IsPremiumActive(plan, status)
			require.Equalf(t, want, got, "plan=%s status=%s", plan, status)
		}
	}
}

func TestCheck(t *testing.T) {
	require.NoError(t, Check(companydomain.PlanPaid, companydomain.StatusActive))
	require.ErrorIs(t,
		Check(companydomain.PlanPaid, companydomain.StatusCanceled),
		ErrSubscriptionRequired,
	)
	require.ErrorIs(t,
		Check(companydomain.PlanFree, companydomain.StatusActive),
		ErrSubscriptionRequired,
	)
}
