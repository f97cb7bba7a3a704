package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanCatalogInterval(t *testing.T) {
	catalog := NewStaticPlanCatalog(PlanConfig{
		Products: []PlanProduct{
			{ProductID: "TBMONTHLY", Interval: IntervalMonthly},
			{ProductID: "TBANNUAL", Interval: IntervalAnnual},
		},
	})

	interval, ok := catalog.Interval("TBMONTHLY")
	require.True(t, ok)
	require.Equal(t, IntervalMonthly, interval)

	// provider product ids come back from webhooks with inconsistent casing
	interval, ok = catalog.Interval("tbannual")
	require.True(t, ok)
	require.Equal(t, IntervalAnnual, interval)

	interval, ok = catalog.Interval("  TBMONTHLY  ")
	require.True(t, ok)
	require.Equal(t, IntervalMonthly, interval)

	_, ok = catalog.Interval("SOMETHING_ELSE")
	require.False(t, ok)

	_, ok = catalog.Interval("")
	require.False(t, ok)
}

func TestValidatePlanConfig(t *testing.T) {
	require.Error(t, validatePlanConfig(PlanConfig{}))
	require.Error(t, validatePlanConfig(PlanConfig{
		Products: []PlanProduct{{ProductID: " ", Interval: IntervalMonthly}},
	}))
	require.Error(t, validatePlanConfig(PlanConfig{
		Products: []PlanProduct{{ProductID: "X", Interval: "weekly"}},
	}))
	require.NoError(t, validatePlanConfig(DefaultPlanConfig()))
}
