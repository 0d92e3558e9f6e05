package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSignupIntent(t *testing.T) {
	intent, err := NewSignupIntent("  Kaplan İnşaat ", "Profesyonel", "")
	require.NoError(t, err)
	assert.Equal(t, IntentCreateTenant, intent.Kind)
	assert.Equal(t, "Kaplan İnşaat", intent.TenantName)
	assert.Equal(t, PlanPro, intent.Plan)
	assert.Empty(t, intent.TenantID)

	intent, err = NewSignupIntent("", "", " 2c4a0f6e-8a38-4b8e-9a4e-3b7c1d2e5f60 ")
	require.NoError(t, err)
	assert.Equal(t, IntentJoinTenant, intent.Kind)
	assert.Equal(t, "2c4a0f6e-8a38-4b8e-9a4e-3b7c1d2e5f60", intent.TenantID)

	_, err = NewSignupIntent("Kaplan", "", "2c4a0f6e-8a38-4b8e-9a4e-3b7c1d2e5f60")
	assert.ErrorIs(t, err, ErrIntentAmbiguous)

	_, err = NewSignupIntent("  ", "pro", " ")
	assert.ErrorIs(t, err, ErrIntentMissing)
}

func TestNewSignupIntent_NameLength(t *testing.T) {
	_, err := NewSignupIntent(" A ", "", "")
	assert.ErrorIs(t, err, ErrIntentNameLength)

	_, err = NewSignupIntent(strings.Repeat("ş", MaxCompanyNameLength+1), "", "")
	assert.ErrorIs(t, err, ErrIntentNameLength)

	intent, err := NewSignupIntent(" Aş ", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Aş", intent.TenantName)

	intent, err = NewSignupIntent(strings.Repeat("ş", MaxCompanyNameLength), "", "")
	require.NoError(t, err)
	assert.Equal(t, IntentCreateTenant, intent.Kind)
}

func TestIntentFromMetadata(t *testing.T) {
	tests := []struct {
		name string
		md   Metadata
		want PendingIntent
	}{
		{"missing key", Metadata{}, NoIntent()},
		{"nil value", Metadata{PendingIntentKey: nil}, NoIntent()},
		{"typed value", Metadata{PendingIntentKey: CreateTenantIntent("Kaplan", PlanStarter)}, CreateTenantIntent("Kaplan", PlanStarter)},
		{
			"decoded json create",
			Metadata{PendingIntentKey: map[string]any{"kind": "create_tenant", "tenantName": " Kaplan ", "plan": "Kurumsal"}},
			CreateTenantIntent("Kaplan", PlanEnterprise),
		},
		{
			"unknown plan falls back",
			Metadata{PendingIntentKey: map[string]any{"tenantName": "Kaplan", "plan": "platinum"}},
			CreateTenantIntent("Kaplan", DefaultPlan),
		},
		{
			"decoded json join",
			Metadata{PendingIntentKey: map[string]any{"kind": "join_tenant", "tenantId": "abc"}},
			JoinTenantIntent("abc"),
		},
		{
			"both set, create wins",
			Metadata{PendingIntentKey: map[string]any{"tenantName": "Kaplan", "tenantId": "abc"}},
			CreateTenantIntent("Kaplan", DefaultPlan),
		},
		{"empty object", Metadata{PendingIntentKey: map[string]any{}}, NoIntent()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IntentFromMetadata(tt.md)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntentFromMetadata_Garbage(t *testing.T) {
	got, err := IntentFromMetadata(Metadata{PendingIntentKey: "garbage"})
	assert.Error(t, err)
	assert.True(t, got.IsNone())
}

func TestIntentMetadataRoundTrip(t *testing.T) {
	intent := JoinTenantIntent("2c4a0f6e-8a38-4b8e-9a4e-3b7c1d2e5f60")

	b, err := json.Marshal(intent.ToMetadata())
	require.NoError(t, err)
	var stored Metadata
	require.NoError(t, json.Unmarshal(b, &stored))

	got, err := IntentFromMetadata(stored)
	require.NoError(t, err)
	assert.Equal(t, intent, got)
}

func TestClearIntent(t *testing.T) {
	assert.Equal(t, Metadata{PendingIntentKey: nil}, ClearIntentPatch())
	assert.Equal(t, ClearIntentPatch(), NoIntent().ToMetadata())
}
