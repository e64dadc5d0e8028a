package schemafleet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTenantStatus_Constants(t *testing.T) {
	assert.Equal(t, TenantStatus("trial"), TenantStatusTrial)
	assert.Equal(t, TenantStatus("active"), TenantStatusActive)
	assert.Equal(t, TenantStatus("suspended"), TenantStatusSuspended)
	assert.Equal(t, TenantStatus("expired"), TenantStatusExpired)
}

func TestTenant_ZeroValue(t *testing.T) {
	var tenant Tenant

	assert.Equal(t, "", tenant.ID)
	assert.Equal(t, SchemaName(""), tenant.Schema)
	assert.False(t, tenant.Active)
	assert.True(t, tenant.TrialEndsAt.IsZero())
	assert.True(t, tenant.CreatedAt.IsZero())
}

func TestFleetReport_Failed(t *testing.T) {
	report := FleetReport{Outcomes: map[string]TenantOutcome{
		"t-1": {TenantID: "t-1", Applied: 2},
		"t-2": {TenantID: "t-2", Err: errors.New("boom")},
		"t-3": {TenantID: "t-3", Applied: 1},
	}}

	assert.Equal(t, []string{"t-2"}, report.Failed())
	assert.Equal(t, 3, report.Applied())
}

func TestFleetReport_Empty(t *testing.T) {
	var report FleetReport

	assert.Nil(t, report.Failed())
	assert.Equal(t, 0, report.Applied())
}
