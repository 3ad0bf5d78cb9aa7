package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellwatch/internal/models"
	"wellwatch/internal/recordstore"
)

func testPlanLimits() map[string]models.PlanLimits {
	return map[string]models.PlanLimits{
		"starter":    {MaxProperties: 5, MaxWells: 5},
		"standard":   {MaxProperties: 25, MaxWells: 25},
		"enterprise": {MaxProperties: -1, MaxWells: -1},
	}
}

func seedProperties(store *recordstore.Memory, accountID string, n int) {
	for i := 0; i < n; i++ {
		store.Seed(accountID, models.KindProperty, map[string]string{
			models.FieldSection:  "01",
			models.FieldTownship: "12N",
			models.FieldRange:    "4W",
			models.FieldMeridian: "IM",
		})
	}
}

func TestQuotaCheckWithinLimit(t *testing.T) {
	store := recordstore.NewMemory(0)
	seedProperties(store, "acct-1", 3)
	gate := NewQuotaGate(store, testPlanLimits(), "starter")

	check, err := gate.Check(context.Background(), "acct-1", "starter", models.KindProperty, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, check.Current)
	assert.Equal(t, 5, check.Limit)
	assert.Equal(t, 5, check.AfterUpload)
	assert.False(t, check.WouldExceedLimit, "landing exactly on the limit is allowed")
}

func TestQuotaCheckExceeded(t *testing.T) {
	store := recordstore.NewMemory(0)
	seedProperties(store, "acct-1", 4)
	gate := NewQuotaGate(store, testPlanLimits(), "starter")

	check, err := gate.Check(context.Background(), "acct-1", "starter", models.KindProperty, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, check.AfterUpload)
	assert.True(t, check.WouldExceedLimit)
}

func TestQuotaUnlimitedPlan(t *testing.T) {
	store := recordstore.NewMemory(0)
	seedProperties(store, "acct-1", 500)
	gate := NewQuotaGate(store, testPlanLimits(), "starter")

	check, err := gate.Check(context.Background(), "acct-1", "enterprise", models.KindProperty, 1000)
	require.NoError(t, err)
	assert.Equal(t, -1, check.Limit)
	assert.False(t, check.WouldExceedLimit)
}

func TestQuotaUnknownPlanFallsBack(t *testing.T) {
	store := recordstore.NewMemory(0)
	seedProperties(store, "acct-1", 5)
	gate := NewQuotaGate(store, testPlanLimits(), "starter")

	check, err := gate.Check(context.Background(), "acct-1", "mystery-tier", models.KindProperty, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, check.Limit, "unknown plans use the default plan's limits")
	assert.True(t, check.WouldExceedLimit)
}

func TestQuotaCountsPerKind(t *testing.T) {
	store := recordstore.NewMemory(0)
	seedProperties(store, "acct-1", 5)
	gate := NewQuotaGate(store, testPlanLimits(), "starter")

	// Property records never count against the well ceiling.
	check, err := gate.Check(context.Background(), "acct-1", "starter", models.KindWell, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, check.Current)
	assert.False(t, check.WouldExceedLimit)
}
